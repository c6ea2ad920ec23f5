package events_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tarefa360/tarefa360/internal/core/events"
)

var _ = Describe("EventBus", func() {
	var (
		bus      *events.EventBus
		mu       sync.Mutex
		received []string
	)

	record := func(name string) events.Handler {
		return func(ctx context.Context, event events.Event) error {
			mu.Lock()
			defer mu.Unlock()
			received = append(received, name+":"+event.EventType())
			return nil
		}
	}

	BeforeEach(func() {
		bus = events.NewEventBus(slog.New(slog.NewTextHandler(io.Discard, nil)))
		received = nil
	})

	It("delivers to handlers of the type and to wildcard handlers", func() {
		bus.Subscribe(events.EventTypePeriodActivated, record("period"))
		bus.Subscribe(events.EventTypeAccountCreated, record("account"))
		bus.Subscribe(events.AllEvents, record("audit"))

		Expect(bus.Publish(context.Background(), events.NewPeriodActivatedEvent("p-1", "2025"))).To(Succeed())
		bus.Wait()

		Expect(received).To(ConsistOf("period:period.activated", "audit:period.activated"))
	})

	It("keeps running handlers after the publisher's context is cancelled", func() {
		var handlerErr error
		bus.Subscribe(events.EventTypeNotification, func(ctx context.Context, event events.Event) error {
			handlerErr = ctx.Err()
			return nil
		})

		ctx, cancel := context.WithCancel(context.Background())
		Expect(bus.Publish(ctx, events.NewNotificationEvent("info", "t", "m"))).To(Succeed())
		cancel()
		bus.Wait()

		Expect(handlerErr).NotTo(HaveOccurred())
	})

	It("is a no-op without subscribers", func() {
		Expect(bus.Publish(context.Background(), events.NewNotificationEvent("info", "t", "m"))).To(Succeed())
		Expect(bus.PublishSync(context.Background(), events.NewNotificationEvent("info", "t", "m"))).To(Succeed())
	})

	It("surfaces the first handler failure of a synchronous publish", func() {
		boom := errors.New("boom")
		bus.Subscribe(events.EventTypeCommandCompleted, func(context.Context, events.Event) error { return boom })

		err := bus.PublishSync(context.Background(), events.NewCommandCompletedEvent("users", "u-1", "confirmed", ""))
		Expect(err).To(MatchError(boom))
	})

	It("carries the typed payload", func() {
		event := events.NewAccountCreatedEvent("u-1", "appraiser", "Active")

		Expect(event.EventID()).NotTo(BeEmpty())
		Expect(event.Payload()).To(HaveKeyWithValue("role", "appraiser"))
	})
})
