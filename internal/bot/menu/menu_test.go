package menu

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/models"
)

func buttons(kb tgbotapi.ReplyKeyboardMarkup) map[string]bool {
	out := make(map[string]bool)
	for _, row := range kb.Keyboard {
		for _, b := range row {
			out[b.Text] = true
		}
	}
	return out
}

func TestForRole(t *testing.T) {
	t.Run("admin_full_menu", func(t *testing.T) {
		b := buttons(ForRole(models.Admin))
		for _, want := range []string{"👥 Ученики", "➕ Добавить ученика", "👤 Профиль", "🚪 Выйти"} {
			if !b[want] {
				t.Fatalf("в меню админа нет кнопки %q", want)
			}
		}
	})

	t.Run("teacher_no_add_student", func(t *testing.T) {
		b := buttons(ForRole(models.Teacher))
		if !b["👥 Ученики"] {
			t.Fatal("учитель должен видеть список учеников")
		}
		if b["➕ Добавить ученика"] {
			t.Fatal("добавление ученика — только для админа")
		}
	})

	t.Run("others_restricted", func(t *testing.T) {
		for _, role := range []models.Role{models.Student, "", "parent"} {
			b := buttons(ForRole(role))
			if b["👥 Ученики"] {
				t.Fatalf("роль %q не должна видеть список учеников", role)
			}
			if !b["👤 Профиль"] || !b["🚪 Выйти"] {
				t.Fatalf("роль %q должна иметь профиль и выход", role)
			}
		}
	})
}
