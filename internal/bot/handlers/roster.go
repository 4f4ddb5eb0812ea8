package handlers

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/ctxutil"
	"github.com/schooldesk/admin-bot/internal/models"
	"github.com/schooldesk/admin-bot/internal/session"
)

// HandleRoster — список учеников. Доступ только админу и учителю;
// остальным — отказ и карточка профиля вместо списка.
func HandleRoster(env *Env, chatID int64) {
	ctx := context.Background()
	sess, role, ok := env.sessionFor(ctx, chatID)
	if !ok {
		env.reply(chatID, "⚠️ Вы не вошли. /start — войти.")
		return
	}
	if !session.CanViewRoster(role) {
		env.reply(chatID, "🚫 Доступ запрещён: список учеников видят только администратор и учитель.")
		HandleProfile(env, chatID)
		return
	}

	apiCtx, cancel := ctxutil.WithAPITimeout(ctx)
	defer cancel()
	users, err := env.API.ListUsers(apiCtx, sess.Token)
	if err != nil {
		env.reply(chatID, "❌ Список учеников загрузить не удалось.")
		env.Log.Warnw("список учеников не загрузился", "chat_id", chatID, "err", err)
		return
	}

	var students []models.User
	for _, u := range users {
		if u.Role == models.Student || u.Role == "" {
			students = append(students, u)
		}
	}
	getChat(chatID).roster = students

	if len(students) == 0 {
		env.reply(chatID, "Учеников пока нет.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range students {
		label := s.Username + " — " + s.Email
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "roster_open_"+s.ID),
		))
	}
	out := tgbotapi.NewMessage(chatID, "👥 Ученики:")
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	env.send(out)
}

func HandleRosterCallback(env *Env, cq *tgbotapi.CallbackQuery) {
	chatID := cq.From.ID
	data := cq.Data
	if !strings.HasPrefix(data, "roster_open_") {
		return
	}
	id := strings.TrimPrefix(data, "roster_open_")

	st := getChat(chatID)
	for _, s := range st.roster {
		if s.ID == id {
			OpenCard(env, chatID, s)
			return
		}
	}
	env.reply(chatID, "⚠️ Ученик не найден, обновите список.")
}
