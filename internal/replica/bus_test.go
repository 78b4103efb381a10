package replica_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finotbook/cashbook/internal/replica"
)

func TestBus_PublishesMergedPendingSet(t *testing.T) {
	bus := replica.NewBus()
	sub := bus.Subscribe()
	defer sub.Close()

	bus.Publish([]replica.Collection{replica.ColBooks})
	bus.Publish([]replica.Collection{replica.ColTransactions})
	bus.Publish([]replica.Collection{replica.ColBooks})

	select {
	case <-sub.Ready():
	case <-time.After(time.Second):
		t.Fatal("expected ready signal")
	}

	// Three publishes, one merged set.
	assert.Equal(t, []replica.Collection{replica.ColBooks, replica.ColTransactions}, sub.Take())
	assert.Nil(t, sub.Take(), "take drains the pending set")
}

func TestBus_InterestFilter(t *testing.T) {
	bus := replica.NewBus()
	sub := bus.Subscribe(replica.ColTransactions)
	defer sub.Close()

	bus.Publish([]replica.Collection{replica.ColBooks})
	select {
	case <-sub.Ready():
		t.Fatal("uninterested collection must not signal")
	case <-time.After(50 * time.Millisecond):
	}

	bus.Publish([]replica.Collection{replica.ColBooks, replica.ColTransactions})
	select {
	case <-sub.Ready():
	case <-time.After(time.Second):
		t.Fatal("expected ready signal")
	}
	assert.Equal(t, []replica.Collection{replica.ColTransactions}, sub.Take())
}

func TestBus_ClosedSubscriptionReceivesNothing(t *testing.T) {
	bus := replica.NewBus()
	sub := bus.Subscribe()
	sub.Close()

	bus.Publish([]replica.Collection{replica.ColBooks})
	select {
	case <-sub.Ready():
		t.Fatal("closed subscription must not signal")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBus_PublishNeverBlocks(t *testing.T) {
	bus := replica.NewBus()
	sub := bus.Subscribe()
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish([]replica.Collection{replica.ColBooks})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a lagging subscriber")
	}
	require.NotNil(t, sub.Take())
}
