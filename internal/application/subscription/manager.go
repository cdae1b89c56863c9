package subscription

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/tjpa/agil-workflow/internal/application/dispatcher"
	"github.com/tjpa/agil-workflow/internal/domain/event"
)

// Filter decides whether a subscriber receives an event. A nil filter
// matches everything in the collection.
type Filter func(evt *event.Event) bool

// Callback receives matching events. Callbacks run on dispatcher
// goroutines and must not block.
type Callback func(ctx context.Context, evt *event.Event)

// Manager fans domain events out to per-collection subscribers. It plays
// the role the realtime channels played for the web client: a screen
// subscribes to "solicitations" or "accountabilities", optionally with a
// filter, and gets called on every matching change.
type Manager struct {
	mu          sync.RWMutex
	subscribers map[string]map[uint64]subscriber
	dispatcher  dispatcher.Dispatcher
	logger      *zap.Logger
	nextID      atomic.Uint64
	registered  []registration
}

type subscriber struct {
	filter   Filter
	callback Callback
}

type registration struct {
	eventType event.Type
	name      string
}

// collectionTypes groups event types by the collection they belong to.
func collectionTypes() map[string][]event.Type {
	groups := make(map[string][]event.Type)
	for _, t := range []event.Type{
		event.TypeSolicitationCreated,
		event.TypeStatusChanged,
		event.TypeAnalystAssigned,
		event.TypeAccountabilityCreated,
		event.TypeAccountabilityUpdated,
		event.TypeRiskReevaluated,
	} {
		groups[t.Collection()] = append(groups[t.Collection()], t)
	}
	return groups
}

// NewManager creates a subscription manager wired into the dispatcher.
func NewManager(d dispatcher.Dispatcher, logger *zap.Logger) *Manager {
	m := &Manager{
		subscribers: make(map[string]map[uint64]subscriber),
		dispatcher:  d,
		logger:      logger,
	}
	for collection, types := range collectionTypes() {
		coll := collection
		for _, t := range types {
			name := fmt.Sprintf("subscription-manager-%s", t.String())
			d.SubscribeNamed(t, name, func(ctx context.Context, evt *event.Event) error {
				m.deliver(ctx, coll, evt)
				return nil
			})
			m.registered = append(m.registered, registration{eventType: t, name: name})
		}
	}
	return m
}

// Subscribe registers a callback for a collection. The returned function
// removes the subscription.
func (m *Manager) Subscribe(collection string, filter Filter, callback Callback) func() {
	id := m.nextID.Add(1)

	m.mu.Lock()
	if m.subscribers[collection] == nil {
		m.subscribers[collection] = make(map[uint64]subscriber)
	}
	m.subscribers[collection][id] = subscriber{filter: filter, callback: callback}
	m.mu.Unlock()

	m.logger.Debug("Subscription added",
		zap.String("collection", collection),
		zap.Uint64("subscription_id", id))

	return func() {
		m.mu.Lock()
		delete(m.subscribers[collection], id)
		m.mu.Unlock()
	}
}

// SubscribeSolicitation registers a callback for events about one
// solicitation, across both collections.
func (m *Manager) SubscribeSolicitation(solicitationID string, callback Callback) func() {
	filter := func(evt *event.Event) bool {
		return evt.SolicitationID == solicitationID
	}
	unsubA := m.Subscribe("solicitations", filter, callback)
	unsubB := m.Subscribe("accountabilities", filter, callback)
	return func() {
		unsubA()
		unsubB()
	}
}

func (m *Manager) deliver(ctx context.Context, collection string, evt *event.Event) {
	m.mu.RLock()
	subs := make([]subscriber, 0, len(m.subscribers[collection]))
	for _, s := range m.subscribers[collection] {
		subs = append(subs, s)
	}
	m.mu.RUnlock()

	for _, s := range subs {
		if s.filter != nil && !s.filter(evt) {
			continue
		}
		s.callback(ctx, evt)
	}
}

// Count returns the number of active subscriptions for a collection.
func (m *Manager) Count(collection string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscribers[collection])
}

// Close detaches the manager from the dispatcher and drops every active
// subscription. Events dispatched afterwards are not delivered.
func (m *Manager) Close() {
	for _, r := range m.registered {
		m.dispatcher.Unsubscribe(r.eventType, r.name)
	}
	m.mu.Lock()
	m.subscribers = make(map[string]map[uint64]subscriber)
	m.mu.Unlock()
}
