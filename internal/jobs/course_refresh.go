package jobs

import (
	"context"

	"github.com/schooldesk/admin-bot/internal/bot/handlers"
	"github.com/schooldesk/admin-bot/internal/reconciler"
	"go.uber.org/zap"
)

// RefreshOpenCards обновляет разбиение курсов во всех открытых карточках.
// Свежий список, проигравший гонку локальной мутации, отбрасывается
// самим reconciler'ом.
func RefreshOpenCards(log *zap.SugaredLogger) Job {
	return func(ctx context.Context) error {
		var firstErr error
		handlers.ForEachOpenCard(func(r *reconciler.Reconciler) {
			select {
			case <-ctx.Done():
				return
			case <-r.Done():
				return
			default:
			}
			if err := r.RefreshCourses(); err != nil {
				log.Debugw("фоновое обновление курсов не удалось", "err", err)
				if firstErr == nil {
					firstErr = err
				}
			}
		})
		return firstErr
	}
}
