package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/pkg/queue"
)

const notificationJobTTL = 24 * time.Hour

// QueuedNotifier hands notifications to a job queue; workers.NotificationWorker writes them.
// If the queue is unreachable it writes directly so the notification is not lost.
type QueuedNotifier struct {
	queue    queue.Publisher
	name     string
	fallback *NotificationService
	log      logger.Logger
}

func NewQueuedNotifier(q queue.Publisher, name string, fallback *NotificationService, log logger.Logger) *QueuedNotifier {
	return &QueuedNotifier{queue: q, name: name, fallback: fallback, log: log}
}

func (q *QueuedNotifier) Notify(ctx context.Context, n *entity.Notification) {
	data, err := json.Marshal(n)
	if err == nil {
		if err = q.queue.Publish(q.name, data, notificationJobTTL, 0); err == nil {
			return
		}
	}
	q.log.Warnf(ctx, "enqueue notification for %s failed, writing directly: %v", n.UserID, err)
	q.fallback.Notify(ctx, n)
}
