package menu

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/models"
)

// ForRole возвращает главное меню по роли из токена. Список учеников
// видят только админ и учитель; остальным — только профиль.
func ForRole(role models.Role) tgbotapi.ReplyKeyboardMarkup {
	switch role {
	case models.Admin:
		return adminMenu()
	case models.Teacher:
		return teacherMenu()
	default:
		return restrictedMenu()
	}
}

func adminMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("👥 Ученики"),
			tgbotapi.NewKeyboardButton("➕ Добавить ученика"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("👤 Профиль"),
			tgbotapi.NewKeyboardButton("🚪 Выйти"),
		),
	)
}

func teacherMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("👥 Ученики"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("👤 Профиль"),
			tgbotapi.NewKeyboardButton("🚪 Выйти"),
		),
	)
}

func restrictedMenu() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("👤 Профиль"),
			tgbotapi.NewKeyboardButton("🚪 Выйти"),
		),
	)
}
