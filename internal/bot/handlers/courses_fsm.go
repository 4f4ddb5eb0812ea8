package handlers

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/bot/shared/fsmutil"
	"github.com/schooldesk/admin-bot/internal/models"
)

type CourseState struct {
	Step   int
	Course models.NewCourse
}

var courseStates = make(map[int64]*CourseState)

func GetCourseState(chatID int64) *CourseState {
	return courseStates[chatID]
}

func renderCourses(env *Env, chatID int64) {
	card := cardOf(env, chatID)
	if card == nil {
		return
	}
	enrolled := card.Enrolled()
	available := card.Available()

	var b strings.Builder
	b.WriteString("📖 Курсы\n\nЗаписан:\n")
	if len(enrolled) == 0 {
		b.WriteString("— ни на один курс\n")
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range enrolled {
		fmt.Fprintf(&b, "• %s (%s)\n", c.Name, c.CourseCode)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📝 "+c.CourseCode, "crs_gr_"+c.ID),
			tgbotapi.NewInlineKeyboardButtonData("➖ "+c.CourseCode, "crs_un_"+c.ID),
		))
	}
	b.WriteString("\nДоступны:\n")
	if len(available) == 0 {
		b.WriteString("— доступных курсов нет\n")
	}
	for _, c := range available {
		fmt.Fprintf(&b, "• %s (%s)\n", c.Name, c.CourseCode)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ "+c.CourseCode, "crs_en_"+c.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🆕 Создать курс", "crs_new"),
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Карточка", "card_menu"),
	))

	out := tgbotapi.NewMessage(chatID, b.String())
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	env.send(out)
}

func handleCourseCallback(env *Env, chatID int64, data string) {
	card := cardOf(env, chatID)
	if card == nil {
		return
	}
	switch {
	case data == "crs_new":
		courseStates[chatID] = &CourseState{Step: 1}
		env.reply(chatID, "Название курса:")
	case strings.HasPrefix(data, "crs_en_"):
		id := strings.TrimPrefix(data, "crs_en_")
		key := "course:enroll"
		if !fsmutil.SetPending(chatID, key) {
			env.reply(chatID, "⏳ Запрос уже обрабатывается…")
			return
		}
		out := card.Enroll(id)
		fsmutil.ClearPending(chatID, key)
		reportOutcome(env, chatID, out, "Ученик записан на курс.")
		if out.Applied {
			renderCourses(env, chatID)
		}
	case strings.HasPrefix(data, "crs_un_"):
		id := strings.TrimPrefix(data, "crs_un_")
		key := "course:unenroll"
		if !fsmutil.SetPending(chatID, key) {
			env.reply(chatID, "⏳ Запрос уже обрабатывается…")
			return
		}
		out := card.Unenroll(id)
		fsmutil.ClearPending(chatID, key)
		reportOutcome(env, chatID, out, "Ученик отписан от курса.")
		if out.Applied {
			renderCourses(env, chatID)
		}
	case strings.HasPrefix(data, "crs_gr_"):
		StartGradeDialog(env, chatID, strings.TrimPrefix(data, "crs_gr_"))
	}
}

func HandleCourseText(env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	state, ok := courseStates[chatID]
	if !ok {
		return
	}

	if fsmutil.IsCancelText(msg.Text) {
		delete(courseStates, chatID)
		env.reply(chatID, "🚫 Создание курса отменено.")
		return
	}
	text := strings.TrimSpace(msg.Text)

	switch state.Step {
	case 1:
		state.Course.Name = text
		state.Step = 2
		env.reply(chatID, "Код курса (например MATH-7A):")
	case 2:
		state.Course.CourseCode = text
		state.Step = 3
		env.reply(chatID, "Описание, или «-» — без описания:")
	case 3:
		if text != "-" {
			state.Course.Description = text
		}
		state.Step = 4
		env.reply(chatID, "Дата начала (ГГГГ-ММ-ДД), или «-» — сегодня:")
	case 4:
		if text == "-" {
			text = time.Now().Format("2006-01-02")
		}
		if err := validate.Var(text, "required,datetime=2006-01-02"); err != nil {
			env.reply(chatID, "⚠️ Дата должна быть в формате ГГГГ-ММ-ДД, попробуйте ещё раз:")
			return
		}
		state.Course.StartDate = text
		delete(courseStates, chatID)

		card := cardOf(env, chatID)
		if card == nil {
			return
		}
		key := "course:create"
		if !fsmutil.SetPending(chatID, key) {
			env.reply(chatID, "⏳ Запрос уже обрабатывается…")
			return
		}
		// Создание и запись одним действием: ответ на создание
		// авторитетен, курс попадает сразу в "записан".
		out := card.CreateAndEnroll(state.Course)
		fsmutil.ClearPending(chatID, key)
		reportOutcome(env, chatID, out, "Курс создан, ученик записан.")
		if out.Applied {
			renderCourses(env, chatID)
		}
	}
}
