// Package watch fans out full-result-set snapshots to live subscribers,
// replacing the backing store's push subscription model: every committed
// change re-delivers the entire current result set, never a diff.
package watch

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// Topic names, one per watched collection.
const (
	TopicEvents    = "events"
	TopicSignups   = "signups"
	TopicInquiries = "inquiries"
	TopicTeams     = "teams"
)

// Loader produces the current full result set for a topic.
type Loader func(ctx context.Context) (any, error)

// Snapshot is one delivery: the complete result set for a topic.
type Snapshot struct {
	Topic string
	Data  any
}

const loadTimeout = 10 * time.Second

type subscriber struct {
	ch chan Snapshot
}

// Hub tracks subscribers per topic and re-queries a topic's loader on
// every change notification. Delivery is latest-wins: a slow consumer
// sees the newest snapshot, intermediate ones are dropped. Notifications
// are version-stamped per topic, so a notification whose load finishes
// late never overwrites a fresher snapshot already delivered.
type Hub struct {
	mu        sync.Mutex
	loaders   map[string]Loader
	subs      map[string]map[*subscriber]struct{}
	version   map[string]uint64
	delivered map[string]uint64
}

// NewHub constructs an empty Hub.
func NewHub() *Hub {
	return &Hub{
		loaders:   make(map[string]Loader),
		subs:      make(map[string]map[*subscriber]struct{}),
		version:   make(map[string]uint64),
		delivered: make(map[string]uint64),
	}
}

// RegisterLoader binds a topic to its snapshot loader. Must be called
// before Subscribe or Notify for that topic.
func (h *Hub) RegisterLoader(topic string, l Loader) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loaders[topic] = l
}

// Subscribe attaches a consumer to a topic. The returned channel delivers
// an initial snapshot and then one per change notification; it is closed
// and the subscription released when ctx ends. The release is tied to the
// consumer's context, not to any explicit call, so an abandoned consumer
// can never leak its subscription.
func (h *Hub) Subscribe(ctx context.Context, topic string) (<-chan Snapshot, error) {
	h.mu.Lock()
	loader, ok := h.loaders[topic]
	if !ok {
		h.mu.Unlock()
		return nil, fmt.Errorf("watch: unknown topic %q", topic)
	}
	sub := &subscriber{ch: make(chan Snapshot, 1)}
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*subscriber]struct{})
	}
	h.subs[topic][sub] = struct{}{}
	joined := h.delivered[topic]
	h.mu.Unlock()

	if snap, err := h.load(ctx, topic, loader); err == nil {
		h.mu.Lock()
		// A notification that raced the initial load has already handed
		// this subscriber a fresher snapshot; keep that one.
		if h.delivered[topic] == joined {
			sub.deliver(snap)
		}
		h.mu.Unlock()
	} else {
		log.Printf("watch: initial snapshot for %s: %v", topic, err)
	}

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs[topic], sub)
		h.mu.Unlock()
		close(sub.ch)
	}()

	return sub.ch, nil
}

// Notify re-queries the topic and fans the fresh snapshot out to every
// subscriber. On loader failure subscribers keep their last-known state.
// Overlapping notifications for one topic may load out of order; the
// version stamp taken here drops any delivery that a later notification
// has already superseded.
func (h *Hub) Notify(topic string) {
	h.mu.Lock()
	loader, ok := h.loaders[topic]
	targets := make([]*subscriber, 0, len(h.subs[topic]))
	for sub := range h.subs[topic] {
		targets = append(targets, sub)
	}
	h.version[topic]++
	version := h.version[topic]
	h.mu.Unlock()

	if !ok || len(targets) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	snap, err := h.load(ctx, topic, loader)
	if err != nil {
		log.Printf("watch: snapshot for %s: %v", topic, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if version <= h.delivered[topic] {
		// A later notification already delivered a fresher snapshot.
		return
	}
	h.delivered[topic] = version
	for _, sub := range targets {
		if _, alive := h.subs[topic][sub]; alive {
			sub.deliver(snap)
		}
	}
}

func (h *Hub) load(ctx context.Context, topic string, loader Loader) (Snapshot, error) {
	data, err := loader(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Topic: topic, Data: data}, nil
}

// deliver replaces any undelivered snapshot with the newer one.
func (s *subscriber) deliver(snap Snapshot) {
	for {
		select {
		case s.ch <- snap:
			return
		default:
			select {
			case <-s.ch:
			default:
			}
		}
	}
}
