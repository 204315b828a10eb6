package pubsub

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/Indomitable/opentelemetry-inspect/internal/domain"
)

var publishedEvents = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "otelinspect_pubsub_published_events_total",
		Help: "Events published to the hub, by topic",
	},
	[]string{"topic"},
)

// Manager is the process-wide subscription registry. It tracks which
// clients subscribe to which topics and owns each topic's broadcast
// channel: created on first subscribe, dropped when the last subscriber
// leaves. Publishing takes the read lock (hot path); subscribing and
// unsubscribing take the write lock.
//
// The manager is deliberately permissive about duplicate (client, topic)
// pairs: every Subscribe call hands back its own independent receiver. The
// WebSocket session layer is the authority on "already subscribed".
type Manager struct {
	logger *zap.Logger

	mu          sync.RWMutex
	subscribers map[string]map[string]struct{}
	channels    map[string]*broadcaster
}

// NewManager creates an empty registry.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		logger:      logger,
		subscribers: make(map[string]map[string]struct{}),
		channels:    make(map[string]*broadcaster),
	}
}

// Subscribe registers clientID on topic and returns a fresh receiver on
// the topic's broadcast channel, creating the channel if this is the first
// subscriber.
func (m *Manager) Subscribe(topic, clientID string) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.subscribers[topic]
	if !ok {
		set = make(map[string]struct{})
		m.subscribers[topic] = set
	}
	set[clientID] = struct{}{}

	b, ok := m.channels[topic]
	if !ok {
		b = newBroadcaster(topic)
		m.channels[topic] = b
		m.logger.Debug("created broadcast channel", zap.String("topic", topic))
	}
	m.logger.Debug("client subscribed",
		zap.String("topic", topic),
		zap.String("client_id", clientID))
	return b.subscribe()
}

// Unsubscribe removes clientID from the topic's subscriber set. When the
// set empties, the topic's broadcast channel is dropped and every
// outstanding receiver observes end-of-stream after draining its buffer.
func (m *Manager) Unsubscribe(clientID, topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unsubscribeLocked(clientID, topic)
}

// UnsubscribeClient removes clientID from every topic it subscribes to.
func (m *Manager) UnsubscribeClient(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for topic, set := range m.subscribers {
		if _, ok := set[clientID]; ok {
			m.unsubscribeLocked(clientID, topic)
		}
	}
}

func (m *Manager) unsubscribeLocked(clientID, topic string) {
	set, ok := m.subscribers[topic]
	if !ok {
		return
	}
	delete(set, clientID)
	m.logger.Debug("client unsubscribed",
		zap.String("topic", topic),
		zap.String("client_id", clientID))
	if len(set) > 0 {
		return
	}
	delete(m.subscribers, topic)
	if b, ok := m.channels[topic]; ok {
		delete(m.channels, topic)
		b.closeAll()
		m.logger.Debug("dropped broadcast channel", zap.String("topic", topic))
	}
}

// Publish broadcasts msg to every receiver on its topic and returns the
// receiver count. A topic without subscribers has no channel; publishing to
// it is a silent drop reported as 0. Publish never blocks: a receiver with
// a full buffer loses its oldest unread message instead.
func (m *Manager) Publish(msg Message) int {
	publishedEvents.WithLabelValues(msg.Topic).Inc()

	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.channels[msg.Topic]
	if !ok {
		return 0
	}
	return b.send(msg)
}

// PublishLog publishes a normalized log record on the logs topic.
func (m *Manager) PublishLog(dto domain.LogDto) int {
	return m.Publish(LogMessage(dto))
}

// PublishSpan publishes a normalized span on the traces topic.
func (m *Manager) PublishSpan(dto domain.SpanDto) int {
	return m.Publish(SpanMessage(dto))
}

// PublishMetric publishes a normalized metric on the metrics topic.
func (m *Manager) PublishMetric(dto domain.MetricDto) int {
	return m.Publish(MetricMessage(dto))
}

// SubscriberCount reports how many distinct clients subscribe to topic.
func (m *Manager) SubscriberCount(topic string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers[topic])
}

// HasSubscriber reports whether clientID currently subscribes to topic.
func (m *Manager) HasSubscriber(topic, clientID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.subscribers[topic][clientID]
	return ok
}
