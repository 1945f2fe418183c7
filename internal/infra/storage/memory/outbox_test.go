package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appoutbox "innkeep/internal/app/outbox"
	"innkeep/internal/infra/storage/memory"
)

func record(id string) appoutbox.EventRecord {
	return appoutbox.EventRecord{
		ID:         id,
		Name:       "reservation.committed",
		Payload:    []byte(`{}`),
		OccurredAt: time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		Aggregate:  "INN-A",
	}
}

func TestOutbox_ClaimThenMarkSent(t *testing.T) {
	box := memory.NewOutbox()
	ctx := context.Background()
	require.NoError(t, box.Add(ctx, record("evt-1")))
	require.Equal(t, 1, box.Unsent())

	pending, err := box.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, "evt-1", pending.Record.ID)

	// A claimed event is invisible to other workers.
	other, err := box.Claim(ctx, "worker-2")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, box.MarkSent(ctx, "evt-1"))
	assert.Equal(t, 0, box.Unsent())

	done, err := box.Claim(ctx, "worker-1")
	require.NoError(t, err)
	assert.Nil(t, done)
}

func TestOutbox_MarkFailedDefersUntilNextAttempt(t *testing.T) {
	box := memory.NewOutbox()
	ctx := context.Background()
	require.NoError(t, box.Add(ctx, record("evt-1")))

	pending, err := box.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, 0, pending.Attempts)

	require.NoError(t, box.MarkFailed(ctx, "evt-1", time.Now().Add(time.Hour), "broker down"))
	assert.Equal(t, 1, box.Unsent())

	// Not due yet, so nothing to claim.
	deferred, err := box.Claim(ctx, "worker-1")
	require.NoError(t, err)
	assert.Nil(t, deferred)
}

func TestOutbox_FailedEventBecomesClaimableAgain(t *testing.T) {
	box := memory.NewOutbox()
	ctx := context.Background()
	require.NoError(t, box.Add(ctx, record("evt-1")))

	pending, err := box.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, pending)

	require.NoError(t, box.MarkFailed(ctx, "evt-1", time.Now().Add(-time.Second), "broker down"))

	retry, err := box.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, retry)
	assert.Equal(t, 1, retry.Attempts)
}

func TestOutbox_ClaimsInArrivalOrder(t *testing.T) {
	box := memory.NewOutbox()
	ctx := context.Background()
	require.NoError(t, box.Add(ctx, record("evt-1")))
	require.NoError(t, box.Add(ctx, record("evt-2")))

	first, err := box.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "evt-1", first.Record.ID)

	second, err := box.Claim(ctx, "worker-1")
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "evt-2", second.Record.ID)
}
