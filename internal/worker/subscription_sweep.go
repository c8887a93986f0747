package worker

import (
	"context"
	"time"

	"github.com/ignatzorin/marketplace-backend/internal/goroutine"
	"github.com/ignatzorin/marketplace-backend/internal/logger"
)

// SubscriptionExpirer снимает истёкшие подписки.
type SubscriptionExpirer interface {
	ExpireLapsed(ctx context.Context) (int64, error)
}

// SubscriptionSweep периодически очищает истёкшие подписки инфлюенсеров.
type SubscriptionSweep struct {
	expirer SubscriptionExpirer
	period  time.Duration
}

// NewSubscriptionSweep создаёт фоновую задачу очистки подписок.
func NewSubscriptionSweep(expirer SubscriptionExpirer, period time.Duration) *SubscriptionSweep {
	if period <= 0 {
		period = 24 * time.Hour
	}
	return &SubscriptionSweep{expirer: expirer, period: period}
}

// Start запускает задачу до отмены контекста.
func (w *SubscriptionSweep) Start(ctx context.Context) {
	goroutine.SafeGoWithContext(ctx, func(ctx context.Context) {
		ticker := time.NewTicker(w.period)
		defer ticker.Stop()

		w.runOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.runOnce(ctx)
			}
		}
	})
}

func (w *SubscriptionSweep) runOnce(ctx context.Context) {
	affected, err := w.expirer.ExpireLapsed(ctx)
	if err != nil {
		logger.Log.WithField("error", err.Error()).Error("sweep: не удалось снять истёкшие подписки")
		return
	}
	if affected > 0 {
		logger.Log.WithField("count", affected).Info("sweep: сняты истёкшие подписки")
	}
}
