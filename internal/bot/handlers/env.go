package handlers

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/schooldesk/admin-bot/internal/api"
	"github.com/schooldesk/admin-bot/internal/ctxutil"
	"github.com/schooldesk/admin-bot/internal/metrics"
	"github.com/schooldesk/admin-bot/internal/models"
	"github.com/schooldesk/admin-bot/internal/reconciler"
	"github.com/schooldesk/admin-bot/internal/session"
	"github.com/schooldesk/admin-bot/internal/tg"
	"go.uber.org/zap"
)

// Env — зависимости всех хендлеров: бот, клиент школьного API,
// хранилище сессий и логгер.
type Env struct {
	Bot      *tgbotapi.BotAPI
	API      *api.Client
	Sessions *session.Store
	Log      *zap.SugaredLogger
}

func (e *Env) send(msg tgbotapi.Chattable) {
	if _, err := tg.Send(e.Bot, msg); err != nil {
		metrics.HandlerErrors.Inc()
		e.Log.Warnw("сообщение не отправилось", "err", err)
	}
}

func (e *Env) reply(chatID int64, text string) {
	e.send(tgbotapi.NewMessage(chatID, text))
}

// Reply — то же, что reply, для кода вне пакета (диспетчер).
func (e *Env) Reply(chatID int64, text string) { e.reply(chatID, text) }

// chatState — всё владение чата: сессия с ролью из токена, открытая
// карточка ученика и последний показанный список учеников.
type chatState struct {
	session *models.Session
	role    models.Role
	card    *reconciler.Reconciler
	roster  []models.User
	// Порядок предметов на последней отрисовке вкладки: callback'и
	// ссылаются на предмет по индексу.
	subjOrder []string
}

var chats = struct {
	mu sync.Mutex
	m  map[int64]*chatState
}{m: make(map[int64]*chatState)}

func getChat(chatID int64) *chatState {
	chats.mu.Lock()
	defer chats.mu.Unlock()
	st, ok := chats.m[chatID]
	if !ok {
		st = &chatState{}
		chats.m[chatID] = st
	}
	return st
}

// resetChat сбрасывает чат целиком: закрывает карточку (отменяя
// незавершённые запросы) и забывает сессию. Вызывается на логауте.
func resetChat(chatID int64) {
	chats.mu.Lock()
	st := chats.m[chatID]
	delete(chats.m, chatID)
	chats.mu.Unlock()
	if st != nil && st.card != nil {
		st.card.Close()
	}
	clearDialogStates(chatID)
}

func clearDialogStates(chatID int64) {
	delete(loginStates, chatID)
	delete(addStudentStates, chatID)
	delete(subjectStates, chatID)
	delete(infractionStates, chatID)
	delete(absenceStates, chatID)
	delete(courseStates, chatID)
	delete(gradeDialogStates, chatID)
}

// sessionFor возвращает сессию чата и роль из токена; роль декодируется
// один раз на токен и кэшируется. false — чат не залогинен.
func (e *Env) sessionFor(ctx context.Context, chatID int64) (*models.Session, models.Role, bool) {
	st := getChat(chatID)
	if st.session != nil {
		return st.session, st.role, true
	}
	dbCtx, cancel := ctxutil.WithDBTimeout(ctx)
	defer cancel()
	sess, err := e.Sessions.Get(dbCtx, chatID)
	if err != nil || sess == nil {
		return nil, "", false
	}
	role, err := session.DecodeRole(sess.Token)
	if err != nil {
		// Битый токен — не фатально: сессия есть, привилегий нет.
		e.Log.Warnw("роль из токена не декодировалась", "chat_id", chatID, "err", err)
		role = ""
	}
	st.session = sess
	st.role = role
	return sess, role, true
}

// ForEachOpenCard — обход открытых карточек для фонового обновления
// списка курсов.
func ForEachOpenCard(fn func(r *reconciler.Reconciler)) {
	chats.mu.Lock()
	open := make([]*reconciler.Reconciler, 0, len(chats.m))
	for _, st := range chats.m {
		if st.card != nil {
			open = append(open, st.card)
		}
	}
	chats.mu.Unlock()
	for _, r := range open {
		fn(r)
	}
}
