package handlers

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/api"
	"github.com/schooldesk/admin-bot/internal/models"
	"github.com/schooldesk/admin-bot/internal/reconciler"
)

// OpenCard открывает карточку ученика: прежняя карточка закрывается
// (её незавершённые запросы отменяются), новая загружается пятью
// независимыми запросами. Падение части запросов карточку не блокирует.
func OpenCard(env *Env, chatID int64, student models.User) {
	ctx := context.Background()
	sess, _, ok := env.sessionFor(ctx, chatID)
	if !ok {
		env.reply(chatID, "⚠️ Вы не вошли. /start — войти.")
		return
	}

	st := getChat(chatID)
	if st.card != nil {
		st.card.Close()
	}
	st.card = reconciler.New(ctx, env.API, sess.Token, student, env.Log)
	st.card.Load()

	if st.card.State() == reconciler.StateError {
		env.reply(chatID, "❌ Карточку ученика загрузить не удалось.")
		return
	}
	for _, slice := range []struct{ key, label string }{
		{"infractions", "проступки"},
		{"absences", "пропуски"},
		{"courses", "курсы"},
		{"grades", "сводка оценок"},
	} {
		if st.card.LoadErr(slice.key) != nil {
			env.reply(chatID, "⚠️ Не загрузились "+slice.label+", раздел может быть неполным.")
		}
	}
	sendCardMenu(env, chatID)
}

func cardOf(env *Env, chatID int64) *reconciler.Reconciler {
	st := getChat(chatID)
	if st.card == nil {
		env.reply(chatID, "⚠️ Карточка не открыта. Выберите ученика: 👥 Ученики.")
		return nil
	}
	return st.card
}

func sendCardMenu(env *Env, chatID int64) {
	card := cardOf(env, chatID)
	if card == nil {
		return
	}
	s := card.Student()
	text := fmt.Sprintf("🎓 %s (%s)\n%s", s.FullName(), s.Username, s.Email)
	out := tgbotapi.NewMessage(chatID, text)
	out.ReplyMarkup = cardMenuMarkup()
	env.send(out)
}

func cardMenuMarkup() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📚 Предметы", "card_tab_subjects"),
			tgbotapi.NewInlineKeyboardButtonData("⚠️ Проступки", "card_tab_infr"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗓 Пропуски", "card_tab_abs"),
			tgbotapi.NewInlineKeyboardButtonData("📖 Курсы", "card_tab_courses"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📥 Отчёт", "card_export"),
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Закрыть карточку", "card_close"),
		),
	)
}

// HandleCardCallback — маршрутизация всех callback'ов карточки.
func HandleCardCallback(env *Env, cq *tgbotapi.CallbackQuery) {
	chatID := cq.From.ID
	data := cq.Data

	switch {
	case data == "card_close":
		st := getChat(chatID)
		if st.card != nil {
			st.card.Close()
			st.card = nil
		}
		env.reply(chatID, "Карточка закрыта.")
	case data == "card_menu":
		sendCardMenu(env, chatID)
	case data == "card_tab_subjects":
		renderSubjects(env, chatID)
	case data == "card_tab_infr":
		renderInfractions(env, chatID)
	case data == "card_tab_abs":
		renderAbsences(env, chatID)
	case data == "card_tab_courses":
		renderCourses(env, chatID)
	case data == "card_export":
		HandleExportCard(env, chatID)
	case strings.HasPrefix(data, "subj_"):
		handleSubjectCallback(env, chatID, data)
	case strings.HasPrefix(data, "inf_"):
		handleInfractionCallback(env, chatID, data)
	case strings.HasPrefix(data, "abs_"):
		handleAbsenceCallback(env, chatID, data)
	case strings.HasPrefix(data, "crs_"):
		handleCourseCallback(env, chatID, data)
	case strings.HasPrefix(data, "gd_"):
		HandleGradeDialogCallback(env, cq)
	}
}

// ===== вкладка предметов =====

func renderSubjects(env *Env, chatID int64) {
	card := cardOf(env, chatID)
	if card == nil {
		return
	}
	subjects := card.Subjects()

	names := make([]string, 0, len(subjects))
	for name := range subjects {
		names = append(names, name)
	}
	sort.Strings(names)
	getChat(chatID).subjOrder = names

	var b strings.Builder
	b.WriteString("📚 Предметы и оценки\n\n")
	if len(names) == 0 {
		b.WriteString("Предметов пока нет.")
	}
	for _, name := range names {
		grades := subjects[name]
		if len(grades) == 0 {
			fmt.Fprintf(&b, "%s: оценок нет\n", name)
		} else {
			fmt.Fprintf(&b, "%s: %s\n", name, strings.Join(grades, ", "))
		}
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for i, name := range names {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ "+name, fmt.Sprintf("subj_grade_%d", i)),
			tgbotapi.NewInlineKeyboardButtonData("➖ последняя", fmt.Sprintf("subj_pop_%d", i)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Добавить предмет", "subj_add"),
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Карточка", "card_menu"),
	))

	out := tgbotapi.NewMessage(chatID, b.String())
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	env.send(out)
}

func subjectByIndex(chatID int64, idxStr string) (string, bool) {
	idx, err := strconv.Atoi(idxStr)
	st := getChat(chatID)
	if err != nil || idx < 0 || idx >= len(st.subjOrder) {
		return "", false
	}
	return st.subjOrder[idx], true
}

func apiErrText(err error) string {
	var re *api.RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	var ne *api.NetworkError
	if errors.As(err, &ne) {
		return "сервер недоступен"
	}
	return "внутренняя ошибка"
}

// reportOutcome показывает исход мутации: причину отказа или успех.
func reportOutcome(env *Env, chatID int64, out reconciler.Outcome, okText string) {
	if out.Applied {
		env.reply(chatID, "✅ "+okText)
		return
	}
	text := "⚠️ " + out.Reason
	if out.Err != nil {
		text += ": " + apiErrText(out.Err)
		env.Log.Warnw("операция отклонена", "chat_id", chatID, "reason", out.Reason, "err", out.Err)
	}
	env.reply(chatID, text)
}
