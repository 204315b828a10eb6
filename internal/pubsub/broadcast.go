package pubsub

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// broadcastBuffer is each receiver's buffer depth. A receiver more than
// this many messages behind starts losing its oldest unread ones.
const broadcastBuffer = 100

var droppedEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "otelinspect_pubsub_dropped_events_total",
		Help: "Events dropped because a subscriber fell behind its buffer",
	},
	[]string{"topic"},
)

// broadcaster fans one topic's messages out to its receivers. A mutex
// serializes fan-outs so every receiver observes the same publish order.
type broadcaster struct {
	topic string

	mu   sync.Mutex
	subs []*Subscription
}

func newBroadcaster(topic string) *broadcaster {
	return &broadcaster{topic: topic}
}

func (b *broadcaster) subscribe() *Subscription {
	s := &Subscription{
		topic: b.topic,
		b:     b,
		ch:    make(chan Message, broadcastBuffer),
	}
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
	return s
}

// send delivers msg to every current receiver without ever blocking and
// returns the receiver count.
func (b *broadcaster) send(msg Message) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, s := range b.subs {
		s.push(msg)
	}
	return len(b.subs)
}

func (b *broadcaster) detach(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, cur := range b.subs {
		if cur == s {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// closeAll detaches and closes every receiver. Buffered messages stay
// readable; the next receive after that reports end-of-stream.
func (b *broadcaster) closeAll() {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()
	for _, s := range subs {
		s.terminate()
	}
}

// Subscription is one receiver handle on a topic's broadcast channel. Each
// handle has its own buffer; handles on the same topic do not share
// position.
type Subscription struct {
	topic string
	b     *broadcaster
	ch    chan Message
	once  sync.Once
}

// Topic reports the topic this subscription receives.
func (s *Subscription) Topic() string { return s.topic }

// Events is the receive side of the subscription. It is closed when the
// subscription is cancelled or the topic's channel is dropped; buffered
// events remain readable until then.
func (s *Subscription) Events() <-chan Message { return s.ch }

// Cancel detaches the receiver from the topic channel and closes Events.
// It does not touch the manager's subscriber bookkeeping and is safe to
// call more than once.
func (s *Subscription) Cancel() {
	s.b.detach(s)
	s.terminate()
}

func (s *Subscription) terminate() {
	s.once.Do(func() { close(s.ch) })
}

// push is only called by the owning broadcaster with its mutex held, so
// there is exactly one writer per channel. On a full buffer it frees a slot
// by discarding the oldest unread message, then retries.
func (s *Subscription) push(msg Message) {
	for {
		select {
		case s.ch <- msg:
			return
		default:
		}
		select {
		case <-s.ch:
			droppedEvents.WithLabelValues(s.topic).Inc()
		default:
		}
	}
}
