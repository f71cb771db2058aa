package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gabrielmellace1/portfolioManager-sub000/internal/domain"

	"github.com/shopspring/decimal"
)

// fakeConn records everything the hub sends it
type fakeConn struct {
	id     string
	sent   [][]byte
	closed bool
}

func (f *fakeConn) ID() string    { return f.id }
func (f *fakeConn) Send(b []byte) { f.sent = append(f.sent, b) }
func (f *fakeConn) Close()        { f.closed = true }

func sampleUpdates(n int) []domain.PriceUpdate {
	updates := make([]domain.PriceUpdate, n)
	for i := range updates {
		updates[i] = domain.PriceUpdate{
			AssetID:      uint(i + 1),
			Ticker:       "AAPL",
			CurrentPrice: decimal.NewFromInt(160),
			Timestamp:    time.Now(),
		}
	}
	return updates
}

func TestHub_GroupScopedDelivery(t *testing.T) {
	h := NewHub()

	subscribed := &fakeConn{id: "sub"}
	bystander := &fakeConn{id: "bystander"}

	h.Register(subscribed)
	h.Register(bystander)
	h.Subscribe(subscribed)

	h.PublishPriceUpdates(sampleUpdates(2))
	h.BroadcastSystemMessage("updates active", domain.SeverityInfo)

	// Subscribed connection gets both the batch and the system message
	if len(subscribed.sent) != 2 {
		t.Fatalf("Expected 2 messages for subscriber, got %d", len(subscribed.sent))
	}

	var batch priceUpdateMessage
	if err := json.Unmarshal(subscribed.sent[0], &batch); err != nil {
		t.Fatalf("Failed to decode batch: %v", err)
	}
	if batch.Type != TypePriceUpdate || len(batch.Data) != 2 {
		t.Errorf("Unexpected batch: type=%s len=%d", batch.Type, len(batch.Data))
	}

	// Bystander gets only the system message
	if len(bystander.sent) != 1 {
		t.Fatalf("Expected 1 message for bystander, got %d", len(bystander.sent))
	}
	var sys systemMessage
	if err := json.Unmarshal(bystander.sent[0], &sys); err != nil {
		t.Fatalf("Failed to decode system message: %v", err)
	}
	if sys.Type != "info" || sys.Message != "updates active" {
		t.Errorf("Unexpected system message: %+v", sys)
	}
}

func TestHub_EmptyBatchNotPublished(t *testing.T) {
	h := NewHub()
	c := &fakeConn{id: "sub"}
	h.Register(c)
	h.Subscribe(c)

	h.PublishPriceUpdates(nil)
	h.PublishPriceUpdates([]domain.PriceUpdate{})

	if len(c.sent) != 0 {
		t.Errorf("Empty batches must not be delivered, got %d messages", len(c.sent))
	}
}

func TestHub_SubscribeIdempotent(t *testing.T) {
	h := NewHub()
	c := &fakeConn{id: "sub"}
	h.Register(c)

	h.Subscribe(c)
	h.Subscribe(c)

	if h.SubscriberCount() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", h.SubscriberCount())
	}

	h.PublishPriceUpdates(sampleUpdates(1))
	if len(c.sent) != 1 {
		t.Errorf("Double subscribe must not duplicate delivery, got %d messages", len(c.sent))
	}

	h.Unsubscribe(c)
	h.Unsubscribe(c)
	if h.SubscriberCount() != 0 {
		t.Errorf("Expected 0 subscribers, got %d", h.SubscriberCount())
	}
}

func TestHub_SubscribeRequiresRegistration(t *testing.T) {
	h := NewHub()
	c := &fakeConn{id: "ghost"}

	h.Subscribe(c)
	if h.SubscriberCount() != 0 {
		t.Error("Unregistered connection must not join the price group")
	}
}

func TestHub_UnregisterClearsMembership(t *testing.T) {
	h := NewHub()
	c := &fakeConn{id: "sub"}
	h.Register(c)
	h.Subscribe(c)

	h.Unregister(c)

	if !c.closed {
		t.Error("Unregister should close the connection")
	}
	if h.ConnectedCount() != 0 || h.SubscriberCount() != 0 {
		t.Error("Unregister should clear tracking and group membership")
	}

	// Idempotent: a second unregister is a no-op
	h.Unregister(c)
}

func TestHub_Counts(t *testing.T) {
	h := NewHub()

	a := &fakeConn{id: "a"}
	b := &fakeConn{id: "b"}
	h.Register(a)
	h.Register(b)
	h.Subscribe(b)

	if h.ConnectedCount() != 2 {
		t.Errorf("Expected 2 connected, got %d", h.ConnectedCount())
	}
	if h.SubscriberCount() != 1 {
		t.Errorf("Expected 1 subscriber, got %d", h.SubscriberCount())
	}
}
