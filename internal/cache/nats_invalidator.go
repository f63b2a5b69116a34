package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/ghosttier/arsenal-server/internal/logging"
)

// NATSInvalidator implements Invalidator over NATS Pub/Sub, fanning catalog
// cache deletions out to every running instance. Messages from the own node
// are dropped, and a short dedupe window suppresses repeated keys.
type NATSInvalidator struct {
	conn    *nats.Conn
	subject string
	nodeID  string

	subscription *nats.Subscription
	handler      InvalidationHandler

	recentKeys   map[string]time.Time
	keysMutex    sync.Mutex
	dedupeWindow time.Duration
}

// InvalidationMessage is the wire format for invalidation announcements.
type InvalidationMessage struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	NodeID    string    `json:"node_id"`
}

// NewNATSInvalidator connects to NATS and returns a ready invalidator.
func NewNATSInvalidator(url, nodeID string) (*NATSInvalidator, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	opts := []nats.Option{
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logging.Warn("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSInvalidator{
		conn:         conn,
		subject:      "catalog.cache.invalidation",
		nodeID:       nodeID,
		recentKeys:   make(map[string]time.Time),
		dedupeWindow: 5 * time.Second,
	}, nil
}

// PublishInvalidation implements Invalidator.
func (n *NATSInvalidator) PublishInvalidation(ctx context.Context, key string) error {
	msg := InvalidationMessage{
		Key:       key,
		Timestamp: time.Now(),
		NodeID:    n.nodeID,
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := n.conn.Publish(n.subject, data); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return nil
}

// SubscribeInvalidations implements Invalidator.
func (n *NATSInvalidator) SubscribeInvalidations(handler InvalidationHandler) error {
	n.handler = handler
	sub, err := n.conn.Subscribe(n.subject, func(m *nats.Msg) {
		var msg InvalidationMessage
		if err := json.Unmarshal(m.Data, &msg); err != nil {
			logging.Warn("Malformed invalidation message: %v", err)
			return
		}
		if msg.NodeID == n.nodeID {
			return // own announcement
		}
		if n.isDuplicate(msg.Key) {
			return
		}
		if err := n.handler(msg.Key); err != nil {
			logging.Warn("Invalidation handler failed for %s: %v", msg.Key, err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", n.subject, err)
	}
	n.subscription = sub
	return nil
}

// Close implements Invalidator.
func (n *NATSInvalidator) Close() error {
	if n.subscription != nil {
		_ = n.subscription.Unsubscribe()
	}
	n.conn.Close()
	return nil
}

func (n *NATSInvalidator) isDuplicate(key string) bool {
	now := time.Now()
	n.keysMutex.Lock()
	defer n.keysMutex.Unlock()

	if seen, ok := n.recentKeys[key]; ok && now.Sub(seen) < n.dedupeWindow {
		return true
	}
	n.recentKeys[key] = now

	// Prune expired entries opportunistically.
	for k, t := range n.recentKeys {
		if now.Sub(t) >= n.dedupeWindow {
			delete(n.recentKeys, k)
		}
	}
	return false
}
