package handlers

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/bot/shared/fsmutil"
)

// SubjectState — ожидание текстового ввода на вкладке предметов:
// либо название нового предмета, либо оценка по выбранному предмету.
type SubjectState struct {
	Mode    string // "add_subject" | "add_grade"
	Subject string
}

var subjectStates = make(map[int64]*SubjectState)

func GetSubjectState(chatID int64) *SubjectState {
	return subjectStates[chatID]
}

func handleSubjectCallback(env *Env, chatID int64, data string) {
	switch {
	case data == "subj_add":
		subjectStates[chatID] = &SubjectState{Mode: "add_subject"}
		env.reply(chatID, "Название нового предмета:")
	case strings.HasPrefix(data, "subj_grade_"):
		subject, ok := subjectByIndex(chatID, strings.TrimPrefix(data, "subj_grade_"))
		if !ok {
			env.reply(chatID, "⚠️ Предмет не найден, откройте вкладку заново.")
			return
		}
		subjectStates[chatID] = &SubjectState{Mode: "add_grade", Subject: subject}
		env.reply(chatID, "Оценка по предмету «"+subject+"»:")
	case strings.HasPrefix(data, "subj_pop_"):
		subject, ok := subjectByIndex(chatID, strings.TrimPrefix(data, "subj_pop_"))
		if !ok {
			env.reply(chatID, "⚠️ Предмет не найден, откройте вкладку заново.")
			return
		}
		removeLatestGrade(env, chatID, subject)
	}
}

func HandleSubjectText(env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	state, ok := subjectStates[chatID]
	if !ok {
		return
	}

	if fsmutil.IsCancelText(msg.Text) {
		delete(subjectStates, chatID)
		env.reply(chatID, "🚫 Отменено.")
		return
	}

	card := cardOf(env, chatID)
	if card == nil {
		delete(subjectStates, chatID)
		return
	}

	switch state.Mode {
	case "add_subject":
		delete(subjectStates, chatID)
		out := card.AddSubject(msg.Text)
		reportOutcome(env, chatID, out, "Предмет добавлен.")
		if out.Applied {
			renderSubjects(env, chatID)
		}
	case "add_grade":
		delete(subjectStates, chatID)
		out := card.AddGrade(state.Subject, msg.Text)
		reportOutcome(env, chatID, out, "Оценка выставлена.")
		if out.Applied {
			renderSubjects(env, chatID)
		}
	}
}

func removeLatestGrade(env *Env, chatID int64, subject string) {
	key := "subj:pop"
	if !fsmutil.SetPending(chatID, key) {
		env.reply(chatID, "⏳ Запрос уже обрабатывается…")
		return
	}
	defer fsmutil.ClearPending(chatID, key)

	card := cardOf(env, chatID)
	if card == nil {
		return
	}
	out := card.RemoveLatestGrade(subject)
	reportOutcome(env, chatID, out, "Последняя оценка снята.")
	if out.Applied {
		renderSubjects(env, chatID)
	}
}
