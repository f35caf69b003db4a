package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/escuela-gastro/procurement-api/internal/models"
	"github.com/escuela-gastro/procurement-api/pkg/jobs"
)

// ProcessEventType labels procurement lifecycle notifications.
type ProcessEventType string

const (
	ProcessEventStarted   ProcessEventType = "PROCESS_STARTED"
	ProcessEventAdvanced  ProcessEventType = "PROCESS_ADVANCED"
	ProcessEventFinalized ProcessEventType = "PROCESS_FINALIZED"
	ProcessEventCancelled ProcessEventType = "PROCESS_CANCELLED"
)

// ProcessEvent describes one transition of the procurement process.
type ProcessEvent struct {
	Type       ProcessEventType   `json:"type"`
	OrderID    string             `json:"orderId"`
	WeekNumber int                `json:"weekNumber"`
	FromStep   models.ProcessStep `json:"fromStep"`
	ToStep     models.ProcessStep `json:"toStep"`
	Actor      string             `json:"actor"`
	At         time.Time          `json:"at"`
}

// ProcessObserver receives procurement lifecycle events. Subscribers are
// invoked asynchronously; a slow observer never blocks a transition.
type ProcessObserver interface {
	OnProcessEvent(ctx context.Context, event ProcessEvent) error
}

// ProcessObserverFunc allows using plain functions as observers.
type ProcessObserverFunc func(ctx context.Context, event ProcessEvent) error

// OnProcessEvent implements ProcessObserver.
func (f ProcessObserverFunc) OnProcessEvent(ctx context.Context, event ProcessEvent) error {
	return f(ctx, event)
}

// ProcessNotifier fans procurement events out to registered observers through
// a background worker queue.
type ProcessNotifier struct {
	queue  *jobs.Queue
	logger *zap.Logger

	mu        sync.RWMutex
	observers []ProcessObserver
}

// NewProcessNotifier constructs the notifier and its dispatch queue.
func NewProcessNotifier(logger *zap.Logger, cfg jobs.QueueConfig) *ProcessNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	n := &ProcessNotifier{logger: logger}
	cfg.Logger = logger
	n.queue = jobs.NewQueue("process-events", n.dispatch, cfg)
	return n
}

// Start launches the dispatch workers.
func (n *ProcessNotifier) Start(ctx context.Context) {
	n.queue.Start(ctx)
}

// Stop drains the dispatch workers.
func (n *ProcessNotifier) Stop() {
	n.queue.Stop()
}

// Subscribe registers an observer for all subsequent events.
func (n *ProcessNotifier) Subscribe(observer ProcessObserver) {
	if observer == nil {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = append(n.observers, observer)
}

// Publish enqueues an event for asynchronous delivery. Delivery failures are
// logged, never surfaced to the transition that produced the event.
func (n *ProcessNotifier) Publish(event ProcessEvent) {
	if n == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	err := n.queue.Enqueue(jobs.Job{
		ID:      uuid.NewString(),
		Type:    string(event.Type),
		Payload: event,
	})
	if err != nil {
		n.logger.Warn("failed to enqueue process event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func (n *ProcessNotifier) dispatch(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(ProcessEvent)
	if !ok {
		n.logger.Warn("unexpected process event payload", zap.String("job_id", job.ID))
		return nil
	}
	n.mu.RLock()
	observers := append([]ProcessObserver(nil), n.observers...)
	n.mu.RUnlock()
	for _, observer := range observers {
		if err := observer.OnProcessEvent(ctx, event); err != nil {
			n.logger.Warn("process observer failed",
				zap.String("type", string(event.Type)),
				zap.String("order_id", event.OrderID),
				zap.Error(err))
		}
	}
	return nil
}
