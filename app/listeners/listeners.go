// Package listeners reacts to order lifecycle events: buyer emails go
// through the queue, and an optional fulfilment webhook is notified.
// Handlers run on a bounded worker pool so a burst of checkouts cannot
// spawn unbounded goroutines.
package listeners

import (
	"context"

	"github.com/mkamalov/bazar/app/jobs"
	"github.com/mkamalov/bazar/app/repositories"
	"github.com/mkamalov/bazar/app/services"
	"github.com/mkamalov/bazar/config"
	"github.com/mkamalov/bazar/pkg/event"
	"github.com/mkamalov/bazar/pkg/logger"
	"github.com/mkamalov/bazar/pkg/notification"
	"github.com/mkamalov/bazar/pkg/queue"
	"github.com/mkamalov/bazar/pkg/workerpool"
	"gorm.io/gorm"
)

type orderWebhook struct {
	ev services.OrderEvent
}

func (n *orderWebhook) Via() []string { return []string{"webhook"} }

func (n *orderWebhook) ToWebhook() notification.WebhookData {
	return notification.WebhookData{
		Payload: n.ev,
	}
}

// Register hooks the order listeners into the event bus. The pool
// bounds concurrent handler work; callers own its lifetime.
func Register(db *gorm.DB, pool *workerpool.Pool) {
	users := repositories.NewUserRepository(db)
	webhookURL := config.Get("ORDER_WEBHOOK_URL", "")
	if webhookURL != "" {
		notification.SetWebhookURL(webhookURL)
	}

	handle := func(fn func(ev services.OrderEvent)) event.Handler {
		return func(_ context.Context, payload interface{}) {
			ev, ok := payload.(services.OrderEvent)
			if !ok {
				return
			}
			if err := pool.Submit(func() { fn(ev) }); err != nil {
				logger.Warn("order listener dropped", "event", ev.OrderNumber, "error", err)
			}
		}
	}

	buyerEmail := func(ev services.OrderEvent) (string, bool) {
		if ev.BuyerID == nil {
			return "", false
		}
		user, err := users.FindByID(*ev.BuyerID)
		if err != nil || user.Email == nil {
			return "", false
		}
		return *user.Email, true
	}

	event.Listen(services.EventOrderPlaced, handle(func(ev services.OrderEvent) {
		if to, ok := buyerEmail(ev); ok {
			if err := queue.Dispatch(&jobs.OrderPlacedEmail{To: to, OrderNumber: ev.OrderNumber, Total: ev.Total}); err != nil {
				logger.Warn("order mail dispatch failed", "order_number", ev.OrderNumber, "error", err)
			}
		}
		if webhookURL != "" {
			notification.SendAsync("", &orderWebhook{ev: ev})
		}
	}))

	statusMail := handle(func(ev services.OrderEvent) {
		if to, ok := buyerEmail(ev); ok {
			if err := queue.Dispatch(&jobs.OrderStatusEmail{To: to, OrderNumber: ev.OrderNumber, Status: ev.Status}); err != nil {
				logger.Warn("status mail dispatch failed", "order_number", ev.OrderNumber, "error", err)
			}
		}
		if webhookURL != "" {
			notification.SendAsync("", &orderWebhook{ev: ev})
		}
	})
	event.Listen(services.EventOrderCanceled, statusMail)
	event.Listen(services.EventOrderRefunded, statusMail)
	event.Listen(services.EventOrderStatusChanged, statusMail)
}
