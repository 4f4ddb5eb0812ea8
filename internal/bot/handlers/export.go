package handlers

import (
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/bot/shared/fsmutil"
	"github.com/schooldesk/admin-bot/internal/export"
)

// HandleExportCard — выгрузка открытой карточки в xlsx.
func HandleExportCard(env *Env, chatID int64) {
	card := cardOf(env, chatID)
	if card == nil {
		return
	}
	key := "export:card"
	if !fsmutil.SetPending(chatID, key) {
		env.reply(chatID, "⏳ Отчёт уже формируется…")
		return
	}
	defer fsmutil.ClearPending(chatID, key)

	path, err := export.StudentReport(card.Student(), card.Subjects(), card.Infractions(), card.Absences())
	if err != nil {
		env.reply(chatID, "❌ Отчёт сформировать не удалось.")
		env.Log.Errorw("экспорт карточки не удался", "chat_id", chatID, "err", err)
		return
	}
	defer func() { _ = os.Remove(path) }()

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(path))
	doc.Caption = "📥 Отчёт по ученику " + card.Student().FullName()
	env.send(doc)
}
