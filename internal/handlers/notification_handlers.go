package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

const notifyTimeout = 15 * time.Second

//
// --- Notification Helpers ---
//

// notify is an internal helper that runs send against the configured
// Notifier. It is not a handler itself but is called by the submission
// handlers once their row is stored.
// NOTE: Delivery is best-effort. Failures are logged and never change the
// response the visitor gets.
func (h *Handlers) notify(c *gin.Context, what string, send func(ctx context.Context, n Notifier) error) {
	if h.Notifier == nil {
		return
	}
	// The visitor may hang up; the notification should still go out.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), notifyTimeout)
	defer cancel()

	if err := send(ctx, h.Notifier); err != nil {
		log.Printf("WARNING: %s notification failed: %v", what, err)
	}
}
