package handlers

import (
	"context"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/api"
	"github.com/schooldesk/admin-bot/internal/bot/shared/fsmutil"
	"github.com/schooldesk/admin-bot/internal/ctxutil"
	"github.com/schooldesk/admin-bot/internal/models"
)

type AddStudentState struct {
	Step      int
	FirstName string
	LastName  string
}

var addStudentStates = make(map[int64]*AddStudentState)

var validate = validator.New()

func GetAddStudentState(chatID int64) *AddStudentState {
	return addStudentStates[chatID]
}

// StartAddStudent — регистрация ученика, только для админа.
func StartAddStudent(env *Env, chatID int64) {
	_, role, ok := env.sessionFor(context.Background(), chatID)
	if !ok {
		env.reply(chatID, "⚠️ Вы не вошли. /start — войти.")
		return
	}
	if role != models.Admin {
		env.reply(chatID, "🚫 Добавлять учеников может только администратор.")
		return
	}
	addStudentStates[chatID] = &AddStudentState{Step: 1}
	env.reply(chatID, "Имя ученика:")
}

func HandleAddStudentText(env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	state, ok := addStudentStates[chatID]
	if !ok {
		return
	}

	if fsmutil.IsCancelText(msg.Text) {
		delete(addStudentStates, chatID)
		env.reply(chatID, "🚫 Добавление отменено.")
		return
	}

	switch state.Step {
	case 1:
		state.FirstName = msg.Text
		state.Step = 2
		env.reply(chatID, "Фамилия ученика:")
	case 2:
		state.LastName = msg.Text
		state.Step = 3
		env.reply(chatID, "Email ученика:")
	case 3:
		email := msg.Text
		// Валидация до сети: кривой email на сервер не уходит.
		if err := validate.Var(email, "required,email"); err != nil {
			env.reply(chatID, "⚠️ Это не похоже на email, попробуйте ещё раз:")
			return
		}
		submitAddStudent(env, chatID, state, email)
	}
}

func submitAddStudent(env *Env, chatID int64, state *AddStudentState, email string) {
	key := "addstudent"
	if !fsmutil.SetPending(chatID, key) {
		env.reply(chatID, "⏳ Запрос уже обрабатывается…")
		return
	}
	defer fsmutil.ClearPending(chatID, key)

	ctx := context.Background()
	sess, _, ok := env.sessionFor(ctx, chatID)
	if !ok {
		delete(addStudentStates, chatID)
		return
	}

	apiCtx, cancel := ctxutil.WithAPITimeout(ctx)
	defer cancel()
	created, err := env.API.CreateUser(apiCtx, sess.Token, api.NewStudent{
		FirstName: state.FirstName,
		LastName:  state.LastName,
		Email:     email,
		Role:      string(models.Student),
	})
	if err != nil {
		env.reply(chatID, "❌ Ученика добавить не удалось: "+apiErrText(err))
		return
	}

	delete(addStudentStates, chatID)
	env.reply(chatID, "✅ Ученик добавлен.\n\nЛогин: "+created.Username+
		"\nПервичный пароль: "+created.InitialPassword+
		"\n\nПередайте эти данные ученику.")
	HandleRoster(env, chatID)
}
