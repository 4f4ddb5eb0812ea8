package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/ctxutil"
)

// HandleProfile — карточка профиля: свежая запись пользователя с
// сервера, при недоступности — копия из сессии.
func HandleProfile(env *Env, chatID int64) {
	ctx := context.Background()
	sess, role, ok := env.sessionFor(ctx, chatID)
	if !ok {
		env.reply(chatID, "⚠️ Вы не вошли. /start — войти.")
		return
	}

	user := sess.User
	apiCtx, cancel := ctxutil.WithAPITimeout(ctx)
	defer cancel()
	if fresh, err := env.API.GetUser(apiCtx, sess.Token, sess.User.ID); err == nil {
		user = *fresh
	} else {
		env.Log.Warnw("профиль с сервера не загрузился, показываем сохранённый", "chat_id", chatID, "err", err)
	}

	roleLabel := string(role)
	if roleLabel == "" {
		roleLabel = string(user.Role)
	}
	text := fmt.Sprintf("👤 Профиль\n\nЛогин: %s\nИмя: %s\nEmail: %s\nРоль: %s",
		user.Username, user.FullName(), user.Email, roleLabel)
	env.reply(chatID, text)
}

// HandleLogout — безусловный выход: сессия стирается, карточка
// закрывается, незаписанного состояния по определению нет.
func HandleLogout(env *Env, chatID int64) {
	ctx, cancel := ctxutil.WithDBTimeout(context.Background())
	defer cancel()
	_ = env.Sessions.Clear(ctx, chatID)
	resetChat(chatID)

	out := tgbotapi.NewMessage(chatID, "Вы вышли из системы.")
	out.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	env.send(out)
	StartLogin(env, chatID)
}
