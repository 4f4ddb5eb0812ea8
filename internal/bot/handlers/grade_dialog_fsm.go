package handlers

import (
	"context"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/bot/shared/fsmutil"
	"github.com/schooldesk/admin-bot/internal/ctxutil"
	"github.com/schooldesk/admin-bot/internal/models"
)

// GradeDialogState — диалог управления оценками: ограниченная форма
// над (курс, кандидаты, необязательное задание). Сохранение делает
// reconciler, диалог только собирает и проверяет ввод.
type GradeDialogState struct {
	Step        int // 1 — ввод балла, 2 — комментарий
	CourseID    string
	CourseName  string
	Candidates  []models.User
	Student     *models.User
	Assignments []models.Assignment
	Assignment  *models.Assignment
	ScoreText   string
}

var gradeDialogStates = make(map[int64]*GradeDialogState)

func GetGradeDialogState(chatID int64) *GradeDialogState {
	return gradeDialogStates[chatID]
}

// gradeForm — правила сабмита: ученик выбран, балл в диапазоне.
// Нарушение — локальный отказ, в сеть ничего не уходит.
type gradeForm struct {
	StudentID string  `validate:"required"`
	Score     float64 `validate:"gte=0,lte=100"`
}

func StartGradeDialog(env *Env, chatID int64, courseID string) {
	card := cardOf(env, chatID)
	if card == nil {
		return
	}
	var courseName string
	for _, c := range card.Enrolled() {
		if c.ID == courseID {
			courseName = c.Name
			break
		}
	}
	if courseName == "" {
		env.reply(chatID, "⚠️ Ученик не записан на этот курс.")
		return
	}

	student := card.Student()
	state := &GradeDialogState{
		CourseID:   courseID,
		CourseName: courseName,
		Candidates: []models.User{student},
	}
	// Единственный кандидат выбирается сам.
	if len(state.Candidates) == 1 {
		state.Student = &state.Candidates[0]
	}
	gradeDialogStates[chatID] = state

	sendGradeDialogMenu(env, chatID, state)
}

func sendGradeDialogMenu(env *Env, chatID int64, state *GradeDialogState) {
	var rows [][]tgbotapi.InlineKeyboardButton
	if len(state.Candidates) > 1 {
		for i := range state.Candidates {
			cand := &state.Candidates[i]
			label := cand.FullName()
			if state.Student != nil && state.Student.ID == cand.ID {
				label = "✅ " + label
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, "gd_student_"+cand.ID),
			))
		}
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➕ Оценка", "gd_add"),
			tgbotapi.NewInlineKeyboardButtonData("➖ Снять последнюю", "gd_removelast"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Закрыть", "gd_cancel"),
		),
	)

	out := tgbotapi.NewMessage(chatID, "📝 Оценки: "+state.CourseName)
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	env.send(out)
}

func HandleGradeDialogCallback(env *Env, cq *tgbotapi.CallbackQuery) {
	chatID := cq.From.ID
	state, ok := gradeDialogStates[chatID]
	if !ok {
		return
	}
	data := cq.Data

	switch {
	case data == "gd_cancel":
		delete(gradeDialogStates, chatID)
		fsmutil.DisableMarkup(env.Bot, chatID, cq.Message.MessageID)
		env.reply(chatID, "Диалог оценок закрыт.")
	case strings.HasPrefix(data, "gd_student_"):
		id := strings.TrimPrefix(data, "gd_student_")
		for i := range state.Candidates {
			if state.Candidates[i].ID == id {
				state.Student = &state.Candidates[i]
			}
		}
		sendGradeDialogMenu(env, chatID, state)
	case data == "gd_add":
		if state.Student == nil {
			env.reply(chatID, "⚠️ Сначала выберите ученика.")
			return
		}
		state.Step = 1
		env.reply(chatID, "Балл (0–100):")
	case data == "gd_removelast":
		removeLastGradeInCourse(env, chatID, state)
	}
}

func HandleGradeDialogText(env *Env, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	state, ok := gradeDialogStates[chatID]
	if !ok || state.Step == 0 {
		return
	}

	if fsmutil.IsCancelText(msg.Text) {
		state.Step = 0
		env.reply(chatID, "🚫 Ввод отменён.")
		return
	}

	switch state.Step {
	case 1:
		state.ScoreText = strings.TrimSpace(msg.Text)
		state.Step = 2
		env.reply(chatID, "Комментарий, или «-» — без комментария:")
	case 2:
		comment := strings.TrimSpace(msg.Text)
		if comment == "-" {
			comment = ""
		}
		state.Step = 0
		submitGrade(env, chatID, state, comment)
	}
}

func submitGrade(env *Env, chatID int64, state *GradeDialogState, comment string) {
	// Вся валидация — до сети.
	if state.Student == nil {
		env.reply(chatID, "⚠️ Ученик не выбран.")
		return
	}
	score, err := strconv.ParseFloat(state.ScoreText, 64)
	if err != nil {
		env.reply(chatID, "⚠️ Балл должен быть числом.")
		return
	}
	form := gradeForm{StudentID: state.Student.ID, Score: score}
	if err := validate.Struct(form); err != nil {
		env.reply(chatID, "⚠️ Балл должен быть в диапазоне 0–100.")
		return
	}

	key := "grade:add"
	if !fsmutil.SetPending(chatID, key) {
		env.reply(chatID, "⏳ Запрос уже обрабатывается…")
		return
	}
	defer fsmutil.ClearPending(chatID, key)

	card := cardOf(env, chatID)
	if card == nil {
		return
	}

	ng := models.NewGrade{
		StudentID:      state.Student.ID,
		CourseID:       state.CourseID,
		Score:          score,
		Comment:        comment,
		AssignmentName: "Общая оценка",
	}
	if state.Assignment != nil {
		ng.AssignmentID = state.Assignment.ID
		ng.AssignmentName = state.Assignment.Name
	}

	out := card.AddGradeForCourse(ng)
	if !out.Applied {
		reportOutcome(env, chatID, out, "")
		return
	}
	sendSelfClearing(env, chatID, "✅ Оценка сохранена.")
}

func removeLastGradeInCourse(env *Env, chatID int64, state *GradeDialogState) {
	if state.Student == nil {
		env.reply(chatID, "⚠️ Сначала выберите ученика.")
		return
	}
	key := "grade:removelast"
	if !fsmutil.SetPending(chatID, key) {
		env.reply(chatID, "⏳ Запрос уже обрабатывается…")
		return
	}
	defer fsmutil.ClearPending(chatID, key)

	ctx := context.Background()
	sess, _, ok := env.sessionFor(ctx, chatID)
	if !ok {
		return
	}
	card := cardOf(env, chatID)
	if card == nil {
		return
	}

	// Диалог сам ищет последнюю оценку пары (ученик, курс),
	// удаление делегирует reconciler'у.
	apiCtx, cancel := ctxutil.WithAPITimeout(ctx)
	defer cancel()
	latest, err := env.API.LatestGrade(apiCtx, sess.Token, state.Student.ID, state.CourseID)
	if err != nil {
		env.reply(chatID, "❌ Последнюю оценку найти не удалось: "+apiErrText(err))
		return
	}
	if latest == nil {
		env.reply(chatID, "⚠️ Оценок нет — снимать нечего.")
		return
	}

	out := card.DeleteGradeInCourse(state.CourseID, latest.ID)
	if !out.Applied {
		reportOutcome(env, chatID, out, "")
		return
	}
	sendSelfClearing(env, chatID, "✅ Последняя оценка снята.")
}

// sendSelfClearing — сообщение об успехе, исчезающее само: через
// фиксированную задержку бот его удаляет.
func sendSelfClearing(env *Env, chatID int64, text string) {
	sent, err := env.Bot.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		return
	}
	time.AfterFunc(3*time.Second, func() {
		env.send(tgbotapi.NewDeleteMessage(chatID, sent.MessageID))
	})
}
