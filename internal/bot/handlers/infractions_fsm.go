package handlers

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/bot/shared/fsmutil"
)

type InfractionState struct {
	Step       int
	InfracType string
	Descr      string
}

var infractionStates = make(map[int64]*InfractionState)

func GetInfractionState(chatID int64) *InfractionState {
	return infractionStates[chatID]
}

func renderInfractions(env *Env, chatID int64) {
	card := cardOf(env, chatID)
	if card == nil {
		return
	}
	infractions := card.Infractions()

	var b strings.Builder
	b.WriteString("⚠️ Проступки\n\n")
	if len(infractions) == 0 {
		b.WriteString("Проступков не записано.")
	}
	var rows [][]tgbotapi.InlineKeyboardButton
	for i, inf := range infractions {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, inf.InfracType, inf.Date)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("👁 %d", i+1), "inf_show_"+inf.ID),
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗑 %d", i+1), "inf_del_"+inf.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Добавить проступок", "inf_add"),
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Карточка", "card_menu"),
	))

	out := tgbotapi.NewMessage(chatID, b.String())
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	env.send(out)
}

func handleInfractionCallback(env *Env, chatID int64, data string) {
	card := cardOf(env, chatID)
	if card == nil {
		return
	}
	switch {
	case data == "inf_add":
		infractionStates[chatID] = &InfractionState{Step: 1}
		env.reply(chatID, "Тип проступка:")
	case strings.HasPrefix(data, "inf_show_"):
		id := strings.TrimPrefix(data, "inf_show_")
		for _, inf := range card.Infractions() {
			if inf.ID == id {
				env.reply(chatID, "Описание:\n"+inf.Description)
				return
			}
		}
		env.reply(chatID, "⚠️ Запись не найдена.")
	case strings.HasPrefix(data, "inf_del_"):
		id := strings.TrimPrefix(data, "inf_del_")
		out := card.DeleteInfraction(id)
		reportOutcome(env, chatID, out, "Проступок удалён.")
		if out.Applied {
			renderInfractions(env, chatID)
		}
	}
}

func HandleInfractionText(env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	state, ok := infractionStates[chatID]
	if !ok {
		return
	}

	if fsmutil.IsCancelText(msg.Text) {
		delete(infractionStates, chatID)
		env.reply(chatID, "🚫 Отменено.")
		return
	}

	switch state.Step {
	case 1:
		state.InfracType = strings.TrimSpace(msg.Text)
		state.Step = 2
		env.reply(chatID, "Описание:")
	case 2:
		state.Descr = strings.TrimSpace(msg.Text)
		state.Step = 3
		env.reply(chatID, "Дата (ГГГГ-ММ-ДД), или «-» — сегодня:")
	case 3:
		date := strings.TrimSpace(msg.Text)
		if date == "-" {
			date = time.Now().Format("2006-01-02")
		}
		if err := validate.Var(date, "required,datetime=2006-01-02"); err != nil {
			env.reply(chatID, "⚠️ Дата должна быть в формате ГГГГ-ММ-ДД, попробуйте ещё раз:")
			return
		}
		delete(infractionStates, chatID)

		card := cardOf(env, chatID)
		if card == nil {
			return
		}
		// Пустые тип/описание reconciler отклонит локально, без POST.
		out := card.AddInfraction(state.InfracType, state.Descr, date)
		reportOutcome(env, chatID, out, "Проступок записан.")
		if out.Applied {
			renderInfractions(env, chatID)
		}
	}
}
