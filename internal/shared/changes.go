package shared

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const changeChannel = "erp.changed"

// Change identifies a committed mutation scope. Entity names the store that
// changed (sale_rows, settlements, credit_records, ...), CompanyID the tenant.
type Change struct {
	CompanyID string
	Entity    string
}

// ChangeBroker fans out scoped "data changed" events after each committed
// mutation. Subscribers receive events from this process and, when a Redis
// client is configured, from every other process publishing on the same
// channel.
type ChangeBroker struct {
	client *redis.Client
	origin string

	mu   sync.RWMutex
	subs []chan Change
}

// NewChangeBroker returns a broker. A nil client keeps delivery in-process.
func NewChangeBroker(client *redis.Client) *ChangeBroker {
	return &ChangeBroker{client: client, origin: uuid.NewString()}
}

// Publish notifies subscribers that entity changed within the company scope.
// Delivery is best-effort; a slow subscriber drops the event rather than
// blocking the committing operation.
func (b *ChangeBroker) Publish(ctx context.Context, change Change) {
	if b == nil {
		return
	}
	b.mu.RLock()
	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
		}
	}
	b.mu.RUnlock()

	if b.client != nil {
		// payload carries the origin so Listen can drop this broker's own echo
		_ = b.client.Publish(ctx, changeChannel, b.origin+"|"+change.Entity+"|"+change.CompanyID).Err()
	}
}

// Subscribe registers a new subscriber channel. The caller owns the returned
// cancel func and must call it to release the subscription.
func (b *ChangeBroker) Subscribe() (<-chan Change, func()) {
	ch := make(chan Change, 16)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		for i, sub := range b.subs {
			if sub == ch {
				b.subs = append(b.subs[:i], b.subs[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Listen bridges Redis pub/sub events from other processes into local
// subscribers until ctx is cancelled.
func (b *ChangeBroker) Listen(ctx context.Context) {
	if b == nil || b.client == nil {
		return
	}
	pubsub := b.client.Subscribe(ctx, changeChannel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				origin, rest, _ := strings.Cut(msg.Payload, "|")
				if origin == b.origin {
					continue
				}
				entity, companyID, _ := strings.Cut(rest, "|")
				b.mu.RLock()
				for _, sub := range b.subs {
					select {
					case sub <- Change{CompanyID: companyID, Entity: entity}:
					default:
					}
				}
				b.mu.RUnlock()
			}
		}
	}()
}
