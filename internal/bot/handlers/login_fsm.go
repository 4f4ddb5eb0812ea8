package handlers

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/api"
	"github.com/schooldesk/admin-bot/internal/bot/menu"
	"github.com/schooldesk/admin-bot/internal/bot/shared/fsmutil"
	"github.com/schooldesk/admin-bot/internal/ctxutil"
	"github.com/schooldesk/admin-bot/internal/models"
	"github.com/schooldesk/admin-bot/internal/session"
)

type LoginState struct {
	Step     int
	Username string
}

var loginStates = make(map[int64]*LoginState)

func GetLoginState(chatID int64) *LoginState {
	return loginStates[chatID]
}

// HandleStart — /start: при сохранённой сессии сразу меню по роли,
// иначе запрос логина.
func HandleStart(env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	sess, role, ok := env.sessionFor(context.Background(), chatID)
	if ok {
		out := tgbotapi.NewMessage(chatID, "С возвращением, "+sess.User.FullName()+"!")
		out.ReplyMarkup = menu.ForRole(role)
		env.send(out)
		return
	}
	StartLogin(env, chatID)
}

func StartLogin(env *Env, chatID int64) {
	loginStates[chatID] = &LoginState{Step: 1}
	env.reply(chatID, "Вход в школьную систему. Введите логин:")
}

func HandleLoginText(env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	state, ok := loginStates[chatID]
	if !ok {
		return
	}

	if fsmutil.IsCancelText(msg.Text) {
		delete(loginStates, chatID)
		env.reply(chatID, "🚫 Вход отменён. /start — попробовать снова.")
		return
	}

	switch state.Step {
	case 1:
		state.Username = msg.Text
		state.Step = 2
		env.reply(chatID, "Введите пароль:")
	case 2:
		password := msg.Text
		// Пароль в истории чата не оставляем.
		env.send(tgbotapi.NewDeleteMessage(chatID, msg.MessageID))
		finishLogin(env, chatID, state.Username, password)
	}
}

func finishLogin(env *Env, chatID int64, username, password string) {
	key := "login"
	if !fsmutil.SetPending(chatID, key) {
		env.reply(chatID, "⏳ Запрос уже обрабатывается…")
		return
	}
	defer fsmutil.ClearPending(chatID, key)

	ctx, cancel := ctxutil.WithAPITimeout(context.Background())
	defer cancel()
	res, err := env.API.Login(ctx, username, password)
	if err != nil {
		var re *api.RequestError
		if errors.As(err, &re) && re.Message != "" {
			env.reply(chatID, "❌ Вход не выполнен: "+re.Message)
		} else {
			env.reply(chatID, "❌ Сервер недоступен, попробуйте позже.")
		}
		env.Log.Warnw("логин не прошёл", "chat_id", chatID, "err", err)
		return
	}

	if err := env.Sessions.Set(ctx, chatID, res.Token, res.User); err != nil {
		env.reply(chatID, "❌ Не удалось сохранить сессию, попробуйте ещё раз.")
		return
	}

	role, err := session.DecodeRole(res.Token)
	if err != nil {
		env.Log.Warnw("роль из токена не декодировалась", "chat_id", chatID, "err", err)
		role = ""
	}

	st := getChat(chatID)
	st.session = &models.Session{ChatID: chatID, Token: res.Token, User: res.User}
	st.role = role

	delete(loginStates, chatID)

	out := tgbotapi.NewMessage(chatID, "✅ Вход выполнен: "+res.User.FullName())
	out.ReplyMarkup = menu.ForRole(role)
	env.send(out)
}
