package notify

import (
	"context"
	"sync"
	"time"

	"github.com/kaizenflow/internal/events"
)

// Forwarder publishes to the local bus and then relays the same event to a
// notifier on its own goroutine.
type Forwarder struct {
	bus      events.Publisher
	notifier Notifier
	timeout  time.Duration
	wg       sync.WaitGroup
}

func NewForwarder(bus events.Publisher, notifier Notifier, timeout time.Duration) *Forwarder {
	if notifier == nil {
		notifier = Nop{}
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Forwarder{
		bus:      bus,
		notifier: Safe{Next: notifier},
		timeout:  timeout,
	}
}

func (f *Forwarder) Publish(eventType string, data any) {
	if f.bus != nil {
		f.bus.Publish(eventType, data)
	}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
		defer cancel()
		_ = f.notifier.Notify(ctx, eventType, data)
	}()
}

// Wait blocks until every in-flight relay has finished.
func (f *Forwarder) Wait() {
	f.wg.Wait()
}
