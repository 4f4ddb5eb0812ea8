package handlers

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/bot/shared/fsmutil"
	"github.com/schooldesk/admin-bot/internal/models"
)

type AbsenceState struct {
	Step int
	Date string
}

var absenceStates = make(map[int64]*AbsenceState)

func GetAbsenceState(chatID int64) *AbsenceState {
	return absenceStates[chatID]
}

func renderAbsences(env *Env, chatID int64) {
	card := cardOf(env, chatID)
	if card == nil {
		return
	}
	absences := card.Absences()

	var b strings.Builder
	b.WriteString("🗓 Пропуски\n\n")
	if len(absences) == 0 {
		b.WriteString("Пропусков не записано.")
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, a := range absences {
		label := "без уважительной причины"
		if a.Status == models.AbsenceExcused {
			label = "по уважительной причине"
		}
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, a.Date, label)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗑 %d", i+1), "abs_del_"+a.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Добавить пропуск", "abs_add"),
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Карточка", "card_menu"),
	))

	out := tgbotapi.NewMessage(chatID, b.String())
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	env.send(out)
}

func handleAbsenceCallback(env *Env, chatID int64, data string) {
	card := cardOf(env, chatID)
	if card == nil {
		return
	}
	switch {
	case data == "abs_add":
		absenceStates[chatID] = &AbsenceState{Step: 1}
		env.reply(chatID, "Дата пропуска (ГГГГ-ММ-ДД), или «-» — сегодня:")
	case data == "abs_exc_yes", data == "abs_exc_no":
		state := absenceStates[chatID]
		if state == nil || state.Step != 2 {
			return
		}
		delete(absenceStates, chatID)
		out := card.AddAbsence(state.Date, data == "abs_exc_yes")
		reportOutcome(env, chatID, out, "Пропуск записан.")
		if out.Applied {
			renderAbsences(env, chatID)
		}
	case strings.HasPrefix(data, "abs_del_"):
		id := strings.TrimPrefix(data, "abs_del_")
		out := card.DeleteAbsence(id)
		reportOutcome(env, chatID, out, "Пропуск удалён.")
		if out.Applied {
			renderAbsences(env, chatID)
		}
	}
}

func HandleAbsenceText(env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	state, ok := absenceStates[chatID]
	if !ok || state.Step != 1 {
		return
	}

	if fsmutil.IsCancelText(msg.Text) {
		delete(absenceStates, chatID)
		env.reply(chatID, "🚫 Отменено.")
		return
	}

	date := strings.TrimSpace(msg.Text)
	if date == "-" {
		date = time.Now().Format("2006-01-02")
	}
	if err := validate.Var(date, "required,datetime=2006-01-02"); err != nil {
		env.reply(chatID, "⚠️ Дата должна быть в формате ГГГГ-ММ-ДД, попробуйте ещё раз:")
		return
	}
	state.Date = date
	state.Step = 2

	out := tgbotapi.NewMessage(chatID, "Причина уважительная?")
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Да", "abs_exc_yes"),
			tgbotapi.NewInlineKeyboardButtonData("Нет", "abs_exc_no"),
		),
	)
	env.send(out)
}
