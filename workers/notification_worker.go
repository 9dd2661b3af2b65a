package workers

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/atomic"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/logger"
	"github.com/jaypeewhat/ThriftStore/pkg/queue"
)

type Emitter interface {
	Emit(ctx context.Context, n *entity.Notification) error
}

type NotificationWorkerConfig struct {
	Queue        string
	Threads      int
	TTR          time.Duration
	Timeout      time.Duration
	ErrorBackoff time.Duration
}

// NotificationWorker drains the notification queue into the store.
// A job is acked only after the row is written; otherwise the queue redelivers it after TTR.
type NotificationWorker struct {
	cfg     NotificationWorkerConfig
	source  queue.Source
	emitter Emitter
	log     logger.Logger

	cancel  context.CancelFunc
	closing *atomic.Bool
	wg      sync.WaitGroup
}

func NewNotificationWorker(cfg NotificationWorkerConfig, source queue.Source, emitter Emitter, log logger.Logger) *NotificationWorker {
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}
	if cfg.ErrorBackoff <= 0 {
		cfg.ErrorBackoff = time.Second
	}
	return &NotificationWorker{
		cfg:     cfg,
		source:  source,
		emitter: emitter,
		log:     log,
		closing: atomic.NewBool(false),
	}
}

func (w *NotificationWorker) Start(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	w.cancel = cancel
	w.log.Infof(ctx, "[NotificationWorker] starting %d consumers on %s", w.cfg.Threads, w.cfg.Queue)
	for i := 0; i < w.cfg.Threads; i++ {
		w.wg.Add(1)
		go w.loop(ctx, i)
	}
}

// Shutdown stops consuming and waits for in-flight jobs.
func (w *NotificationWorker) Shutdown() {
	if !w.closing.CAS(false, true) {
		return
	}
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.log.Infof(context.Background(), "[NotificationWorker] stopped")
}

func (w *NotificationWorker) loop(ctx context.Context, id int) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.source.Consume(w.cfg.Queue, w.cfg.TTR, w.cfg.Timeout)
		if err != nil {
			w.log.Warnf(ctx, "[NotificationWorker-%d] consume error: %v, retrying", id, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.cfg.ErrorBackoff):
			}
			continue
		}
		if job == nil {
			continue
		}
		w.handle(ctx, job)
	}
}

func (w *NotificationWorker) handle(ctx context.Context, job *queue.Job) {
	var n entity.Notification
	if err := json.Unmarshal(job.Data, &n); err != nil {
		// poison job: ack so it is not redelivered forever
		w.log.Errorf(ctx, "[NotificationWorker] drop job %s: %v", job.ID, err)
		w.ack(ctx, job)
		return
	}
	// ids are assigned on insert; a redelivered job must not reuse a stale one
	n.ID = ""
	if err := w.emitter.Emit(ctx, &n); err != nil {
		w.log.Warnf(ctx, "[NotificationWorker] emit job %s failed: %v", job.ID, err)
		return
	}
	w.ack(ctx, job)
}

func (w *NotificationWorker) ack(ctx context.Context, job *queue.Job) {
	if err := w.source.Ack(w.cfg.Queue, job.ID); err != nil {
		w.log.Warnf(ctx, "[NotificationWorker] ack %s failed: %v", job.ID, err)
	}
}
