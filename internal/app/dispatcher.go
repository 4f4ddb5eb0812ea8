package app

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/bot/handlers"
	"github.com/schooldesk/admin-bot/internal/metrics"
	"github.com/schooldesk/admin-bot/internal/tg"
)

// Dispatcher раскладывает апдейты по хендлерам. Текст сначала идёт в
// активный диалог чата, потом по кнопкам меню; callback'и — по префиксу.
type Dispatcher struct {
	env     *handlers.Env
	limiter *ChatLimiter
}

func NewDispatcher(env *handlers.Env) *Dispatcher {
	return &Dispatcher{env: env, limiter: NewChatLimiter()}
}

func (d *Dispatcher) Dispatch(update tgbotapi.Update) {
	metrics.BotUpdates.Inc()

	if update.CallbackQuery != nil {
		cq := update.CallbackQuery
		unlock := d.limiter.lock(cq.From.ID)
		defer unlock()
		// Сначала отвечаем на callback, иначе кнопка «висит».
		_, _ = tg.Request(d.env.Bot, tgbotapi.NewCallback(cq.ID, ""))
		d.dispatchCallback(cq)
		return
	}
	if update.Message == nil || update.Message.Text == "" {
		return
	}
	msg := update.Message
	unlock := d.limiter.lock(msg.Chat.ID)
	defer unlock()
	d.dispatchText(msg)
}

func (d *Dispatcher) dispatchCallback(cq *tgbotapi.CallbackQuery) {
	data := cq.Data
	switch {
	case strings.HasPrefix(data, "roster_"):
		handlers.HandleRosterCallback(d.env, cq)
	case strings.HasPrefix(data, "card_"),
		strings.HasPrefix(data, "subj_"),
		strings.HasPrefix(data, "inf_"),
		strings.HasPrefix(data, "abs_"),
		strings.HasPrefix(data, "crs_"),
		strings.HasPrefix(data, "gd_"):
		handlers.HandleCardCallback(d.env, cq)
	}
}

func (d *Dispatcher) dispatchText(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if msg.Text == "/start" {
		handlers.HandleStart(d.env, msg)
		return
	}

	// Активный диалог забирает текст первым.
	if handlers.GetLoginState(chatID) != nil {
		handlers.HandleLoginText(d.env, msg)
		return
	}
	if handlers.GetAddStudentState(chatID) != nil {
		handlers.HandleAddStudentText(d.env, msg)
		return
	}
	if handlers.GetSubjectState(chatID) != nil {
		handlers.HandleSubjectText(d.env, msg)
		return
	}
	if handlers.GetInfractionState(chatID) != nil {
		handlers.HandleInfractionText(d.env, msg)
		return
	}
	if handlers.GetAbsenceState(chatID) != nil {
		handlers.HandleAbsenceText(d.env, msg)
		return
	}
	if handlers.GetCourseState(chatID) != nil {
		handlers.HandleCourseText(d.env, msg)
		return
	}
	if st := handlers.GetGradeDialogState(chatID); st != nil && st.Step != 0 {
		handlers.HandleGradeDialogText(d.env, msg)
		return
	}

	switch msg.Text {
	case "👥 Ученики":
		handlers.HandleRoster(d.env, chatID)
	case "➕ Добавить ученика":
		handlers.StartAddStudent(d.env, chatID)
	case "👤 Профиль":
		handlers.HandleProfile(d.env, chatID)
	case "🚪 Выйти":
		handlers.HandleLogout(d.env, chatID)
	default:
		d.env.Reply(chatID, "⚠️ Неизвестная команда. Используйте /start")
	}
}
