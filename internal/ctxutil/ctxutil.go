package ctxutil

import (
	"context"
	"time"
)

// Таймауты: для школьного API и для БД сессий.
var (
	DefaultAPITimeout = 10 * time.Second
	DefaultDBTimeout  = 5 * time.Second
)

// WithAPITimeout — стандартный таймаут для запроса к школьному API;
// если у родителя дедлайн ближе — берём остаток.
func WithAPITimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withBudget(parent, DefaultAPITimeout)
}

// WithDBTimeout — стандартный таймаут для БД сессий.
func WithDBTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withBudget(parent, DefaultDBTimeout)
}

func withBudget(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if dl, ok := parent.Deadline(); ok {
		if remain := time.Until(dl); remain < d {
			return context.WithTimeout(parent, remain)
		}
	}
	return context.WithTimeout(parent, d)
}
