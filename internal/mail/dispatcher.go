package mail

import (
	"context"
	"sync"
	"time"

	"taskhub.org/internal/obs"
)

const defaultQueueSize = 64

// Dispatcher decouples mail delivery from request handling. Send enqueues and
// returns immediately; a single worker drains the queue against the wrapped
// Sender. When the queue is full the message is dropped and logged; delivery
// failures never propagate to the caller.
type Dispatcher struct {
	sender  Sender
	queue   chan Message
	timeout time.Duration

	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

// NewDispatcher starts the delivery worker.
func NewDispatcher(sender Sender) *Dispatcher {
	d := &Dispatcher{
		sender:  sender,
		queue:   make(chan Message, defaultQueueSize),
		timeout: 30 * time.Second,
		done:    make(chan struct{}),
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Send enqueues the message without blocking.
func (d *Dispatcher) Send(_ context.Context, msg Message) error {
	select {
	case d.queue <- msg:
	case <-d.done:
		obs.LogRequest(map[string]any{
			"level": "warn", "msg": "mail dropped: dispatcher closed", "to": msg.To,
		})
	default:
		obs.LogRequest(map[string]any{
			"level": "warn", "msg": "mail dropped: queue full", "to": msg.To,
		})
	}
	return nil
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case msg := <-d.queue:
			d.deliver(msg)
		case <-d.done:
			// Drain what is already queued before stopping.
			for {
				select {
				case msg := <-d.queue:
					d.deliver(msg)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(msg Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	if err := d.sender.Send(ctx, msg); err != nil {
		obs.LogRequest(map[string]any{
			"level": "error", "msg": "mail delivery failed",
			"to": msg.To, "subject": msg.Subject, "error": err.Error(),
		})
	}
}

// Close stops the worker after draining queued messages.
func (d *Dispatcher) Close() {
	d.once.Do(func() { close(d.done) })
	d.wg.Wait()
}
