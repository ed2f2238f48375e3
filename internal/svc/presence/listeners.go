package presence

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type NotificationKind uint8

const (
	NotifyConnect NotificationKind = iota + 1
	NotifyDisconnect
	NotifyPresenceUpdate
)

func (k NotificationKind) String() string {
	switch k {
	case NotifyConnect:
		return "connect"
	case NotifyDisconnect:
		return "disconnect"
	case NotifyPresenceUpdate:
		return "presence_update"
	}

	return "unknown"
}

// Notification is delivered to listeners on connection changes and presence updates.
// UserID and Record are only set for NotifyPresenceUpdate.
type Notification struct {
	Kind   NotificationKind
	UserID string
	Record Record
}

type listeners struct {
	mx     sync.Mutex
	subs   map[chan Notification]struct{}
	buffer int
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

func newListeners(buffer int) *listeners {
	if buffer <= 0 {
		buffer = 1
	}

	return &listeners{
		subs:   make(map[chan Notification]struct{}),
		buffer: buffer,
		done:   make(chan struct{}),
	}
}

func (l *listeners) listen(ctx context.Context) <-chan Notification {
	ch := make(chan Notification, l.buffer)

	l.mx.Lock()
	defer l.mx.Unlock()

	if l.closed {
		close(ch)
		return ch
	}

	l.subs[ch] = struct{}{}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()

		select {
		case <-ctx.Done():
		case <-l.done:
		}

		l.remove(ch)
	}()

	return ch
}

func (l *listeners) remove(ch chan Notification) {
	l.mx.Lock()
	defer l.mx.Unlock()

	if _, ok := l.subs[ch]; ok {
		delete(l.subs, ch)
		close(ch)
	}
}

// emit never blocks; a listener that is not keeping up loses the notification
func (l *listeners) emit(n Notification) {
	l.mx.Lock()
	defer l.mx.Unlock()

	for ch := range l.subs {
		select {
		case ch <- n:
		default:
			zap.S().Named("presence").Warnw("listener is full, dropping notification",
				"kind", n.Kind.String(),
				"user_id", n.UserID,
			)
		}
	}
}

func (l *listeners) close() {
	l.mx.Lock()
	if l.closed {
		l.mx.Unlock()
		return
	}

	l.closed = true
	close(l.done)
	l.mx.Unlock()

	l.wg.Wait()
}
