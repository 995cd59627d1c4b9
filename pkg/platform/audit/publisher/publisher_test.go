package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "redhope/pkg/domain"
	audit "redhope/pkg/platform/audit"
	"redhope/pkg/platform/audit/store/memory"
	"redhope/pkg/platform/circuit"
	"redhope/pkg/requestcontext"
)

func TestPublisher_SyncMode(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	bankID := id.NewBankID()
	err := pub.Emit(context.Background(), audit.Event{
		BankID: bankID,
		Action: string(audit.EventStockIncreased),
	})
	require.NoError(t, err)

	events, err := store.ListByBank(context.Background(), bankID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventStockIncreased), events[0].Action)
	assert.NotEmpty(t, events[0].ID)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(100))

	bankID := id.NewBankID()
	for range 10 {
		require.NoError(t, pub.Emit(context.Background(), audit.Event{
			BankID: bankID,
			Action: string(audit.EventRecordCreated),
		}))
	}

	pub.Close()

	events, err := store.ListByBank(context.Background(), bankID)
	require.NoError(t, err)
	assert.Len(t, events, 10, "all events should be drained on close")
}

func TestPublisher_BufferFull_NeverBlocks(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(1))
	defer pub.Close()

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := pub.Emit(context.Background(), audit.Event{Action: string(audit.EventCampDonorEnrolled)})
			if err != nil {
				assert.ErrorIs(t, err, ErrBufferFull)
			}
		}()
	}
	wg.Wait()
}

func TestPublisher_FillsTimestampAndRequestIDFromContext(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	fixed := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), fixed)
	ctx = requestcontext.WithRequestID(ctx, "req-42")

	bankID := id.NewBankID()
	require.NoError(t, pub.Emit(ctx, audit.Event{BankID: bankID, Action: string(audit.EventCampCreated)}))

	events, err := store.ListByBank(ctx, bankID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, fixed, events[0].Timestamp)
	assert.Equal(t, "req-42", events[0].RequestID)
}

func TestPublisher_PreservesExistingTimestamp(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := NewPublisher(store)
	defer pub.Close()

	bankID := id.NewBankID()
	customTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, pub.Emit(context.Background(), audit.Event{
		BankID:    bankID,
		Action:    string(audit.EventStockDecreased),
		Timestamp: customTime,
	}))

	events, err := store.ListByBank(context.Background(), bankID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, customTime, events[0].Timestamp)
}

type failingStore struct {
	mu    sync.Mutex
	calls int
}

func (s *failingStore) Append(context.Context, audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return errors.New("broker unavailable")
}

func TestPublisher_CircuitOpensOnRepeatedFailures(t *testing.T) {
	store := &failingStore{}
	metrics := NewMetrics(prometheus.NewRegistry())
	pub := NewPublisher(store,
		WithMetrics(metrics),
		WithBreaker(circuit.New("audit-test", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))),
	)
	defer pub.Close()

	ctx := context.Background()
	ev := audit.Event{Action: string(audit.EventStockIncreased)}

	assert.Error(t, pub.Emit(ctx, ev))
	assert.Error(t, pub.Emit(ctx, ev))
	assert.ErrorIs(t, pub.Emit(ctx, ev), ErrCircuitOpen)
	assert.Equal(t, 2, store.calls, "open circuit skips the store")
}
