package notify

import (
	"context"
	"sync"
	"time"

	"github.com/BruksfildServices01/consultorio-api/internal/logging"
)

const sendTimeout = 30 * time.Second

// Dispatcher hands emails to a single background worker so delivery never
// sits on a request path.
type Dispatcher struct {
	sender EmailSender
	logger *logging.Logger
	queue  chan EmailMessage
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(sender EmailSender, logger *logging.Logger, size int) *Dispatcher {
	if size <= 0 {
		size = 100
	}
	d := &Dispatcher{
		sender: sender,
		logger: logger,
		queue:  make(chan EmailMessage, size),
	}

	d.wg.Add(1)
	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := d.sender.Send(ctx, msg); err != nil {
			d.logger.Error("email delivery failed", "to", msg.To, "subject", msg.Subject, "error", err)
		}
		cancel()
	}
}

// Enqueue reports false when the message was dropped.
func (d *Dispatcher) Enqueue(msg EmailMessage) bool {
	if d == nil || msg.To == "" {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("email dispatcher closed, dropping message", "to", msg.To)
		return false
	}
	select {
	case d.queue <- msg:
		return true
	default:
		d.logger.Warn("email queue full, dropping message", "to", msg.To)
		return false
	}
}

// Close drains the queue; later messages are dropped.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
