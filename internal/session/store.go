package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/schooldesk/admin-bot/internal/models"
	"go.uber.org/zap"
)

// Store — персистентное хранилище сессий: по одной строке на чат,
// токен плюс сериализованная запись пользователя. Ретраев нет;
// ошибка чтения логируется и означает "сессии нет".
type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

func NewStore(db *sql.DB, log *zap.SugaredLogger) *Store {
	return &Store{db: db, log: log}
}

// Get возвращает nil без ошибки, если сессия не сохранена.
func (s *Store) Get(ctx context.Context, chatID int64) (*models.Session, error) {
	var (
		token   string
		rawUser []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT token, user_data FROM sessions WHERE chat_id = $1`, chatID,
	).Scan(&token, &rawUser)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.log.Warnw("сессию прочитать не удалось, считаем что её нет", "chat_id", chatID, "err", err)
		return nil, nil
	}

	sess := &models.Session{ChatID: chatID, Token: token}
	if err := json.Unmarshal(rawUser, &sess.User); err != nil {
		s.log.Warnw("битая запись пользователя в сессии", "chat_id", chatID, "err", err)
		return nil, nil
	}
	return sess, nil
}

func (s *Store) Set(ctx context.Context, chatID int64, token string, user models.User) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO sessions (chat_id, token, user_data, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (chat_id) DO UPDATE SET token = excluded.token, user_data = excluded.user_data, updated_at = now()`,
		chatID, token, rawUser)
	if err != nil {
		s.log.Errorw("сессию сохранить не удалось", "chat_id", chatID, "err", err)
	}
	return err
}

// Clear удаляет сессию чата. Вызывается на логауте — безусловно,
// без подтверждений и дозаписей.
func (s *Store) Clear(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE chat_id = $1`, chatID)
	if err != nil {
		s.log.Errorw("сессию удалить не удалось", "chat_id", chatID, "err", err)
	}
	return err
}
