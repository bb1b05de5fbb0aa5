package shared

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestChangeBrokerInProcessDelivery(t *testing.T) {
	broker := NewChangeBroker(nil)
	ch, cancel := broker.Subscribe()
	defer cancel()

	broker.Publish(context.Background(), Change{CompanyID: "co-1", Entity: "sale_rows"})

	select {
	case change := <-ch:
		require.Equal(t, "co-1", change.CompanyID)
		require.Equal(t, "sale_rows", change.Entity)
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
	}
}

func TestChangeBrokerDropsWhenSubscriberFull(t *testing.T) {
	broker := NewChangeBroker(nil)
	_, cancel := broker.Subscribe()
	defer cancel()

	// a full or absent reader never blocks the publisher
	for i := 0; i < 100; i++ {
		broker.Publish(context.Background(), Change{CompanyID: "co-1", Entity: "settlements"})
	}
}

func TestChangeBrokerCancelStopsDelivery(t *testing.T) {
	broker := NewChangeBroker(nil)
	ch, cancel := broker.Subscribe()
	cancel()

	broker.Publish(context.Background(), Change{CompanyID: "co-1", Entity: "sale_rows"})

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("delivery after cancel")
		}
	default:
	}
}

func TestChangeBrokerSkipsOwnRedisEcho(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	broker := NewChangeBroker(client)
	broker.Listen(ctx)
	ch, cancel := broker.Subscribe()
	defer cancel()

	// Listen subscribes asynchronously
	time.Sleep(50 * time.Millisecond)

	broker.Publish(ctx, Change{CompanyID: "co-3", Entity: "vouchers"})

	// exactly one delivery: direct, with the bridged copy dropped as self-origin
	got := 0
	deadline := time.After(time.Second)
	for done := false; !done; {
		select {
		case <-ch:
			got++
		case <-deadline:
			done = true
		}
	}
	require.Equal(t, 1, got)
}

func TestChangeBrokerBridgesRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	receiver := NewChangeBroker(client)
	receiver.Listen(ctx)
	ch, cancel := receiver.Subscribe()
	defer cancel()

	// Listen subscribes asynchronously
	time.Sleep(50 * time.Millisecond)

	sender := NewChangeBroker(client)
	sender.Publish(ctx, Change{CompanyID: "co-9", Entity: "credit_records"})

	select {
	case change := <-ch:
		require.Equal(t, "co-9", change.CompanyID)
		require.Equal(t, "credit_records", change.Entity)
	case <-time.After(2 * time.Second):
		t.Fatal("no bridged change delivered")
	}
}
