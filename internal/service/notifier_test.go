package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escuela-gastro/procurement-api/internal/models"
	"github.com/escuela-gastro/procurement-api/pkg/jobs"
)

func TestNotifierDeliversEventsToSubscribers(t *testing.T) {
	notifier := NewProcessNotifier(nil, jobs.QueueConfig{Workers: 1})
	received := make(chan ProcessEvent, 1)
	notifier.Subscribe(ProcessObserverFunc(func(ctx context.Context, event ProcessEvent) error {
		received <- event
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifier.Start(ctx)
	defer notifier.Stop()

	notifier.Publish(ProcessEvent{
		Type:       ProcessEventStarted,
		OrderID:    "order-1",
		WeekNumber: 7,
		FromStep:   models.StepIdle,
		ToStep:     models.StepCollecting,
	})

	select {
	case event := <-received:
		assert.Equal(t, ProcessEventStarted, event.Type)
		assert.Equal(t, "order-1", event.OrderID)
		assert.False(t, event.At.IsZero(), "publish stamps the event time")
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestNotifierObserverErrorDoesNotStopDelivery(t *testing.T) {
	notifier := NewProcessNotifier(nil, jobs.QueueConfig{Workers: 1})
	second := make(chan struct{}, 1)
	notifier.Subscribe(ProcessObserverFunc(func(ctx context.Context, event ProcessEvent) error {
		return assert.AnError
	}))
	notifier.Subscribe(ProcessObserverFunc(func(ctx context.Context, event ProcessEvent) error {
		second <- struct{}{}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notifier.Start(ctx)
	defer notifier.Stop()

	notifier.Publish(ProcessEvent{Type: ProcessEventCancelled, OrderID: "order-1"})

	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("second observer was not invoked after the first failed")
	}
}

func TestNotifierPublishIsSafeWithoutStart(t *testing.T) {
	notifier := NewProcessNotifier(nil, jobs.QueueConfig{})
	require.NotPanics(t, func() {
		notifier.Publish(ProcessEvent{Type: ProcessEventAdvanced, OrderID: "order-1"})
	})

	var nilNotifier *ProcessNotifier
	require.NotPanics(t, func() {
		nilNotifier.Publish(ProcessEvent{Type: ProcessEventAdvanced})
	})
}
