package project

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemID(t *testing.T) {
	assert.Equal(t, "src-bucket:dst-bucket", ItemID("src-bucket", "dst-bucket"))

	item := NewItem("vpc-1", "vpc-2")
	assert.Equal(t, "vpc-1:vpc-2", item.ID)
	assert.Equal(t, StatePending, item.State)
}

func TestItemBegin(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("from pending", func(t *testing.T) {
		item := NewItem("a", "b")
		require.NoError(t, item.Begin(now))
		assert.Equal(t, StateReplicating, item.State)
		require.NotNil(t, item.StartTime)
		assert.Equal(t, now, *item.StartTime)
		assert.Nil(t, item.EndTime)
	})

	t.Run("re-invocation from terminal states", func(t *testing.T) {
		for _, state := range []State{StateReplicated, StateFailed, StateStopped} {
			item := NewItem("a", "b")
			item.State = state
			end := now.Add(-time.Hour)
			item.EndTime = &end

			require.NoError(t, item.Begin(now), "begin from %s", state)
			assert.Equal(t, StateReplicating, item.State)
			assert.Nil(t, item.EndTime, "a new run must clear the previous end time")
		}
	})

	t.Run("already replicating", func(t *testing.T) {
		item := NewItem("a", "b")
		require.NoError(t, item.Begin(now))

		err := item.Begin(now.Add(time.Minute))
		var invalid *InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, StateReplicating, invalid.From)
		assert.Equal(t, StateReplicating, item.State)
		assert.Equal(t, now, *item.StartTime, "a rejected begin must not restamp the start time")
	})
}

func TestItemComplete(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Minute)

	t.Run("from replicating", func(t *testing.T) {
		item := NewItem("a", "b")
		require.NoError(t, item.Begin(start))
		require.NoError(t, item.Complete(end))
		assert.Equal(t, StateReplicated, item.State)
		assert.Equal(t, start, *item.StartTime)
		assert.Equal(t, end, *item.EndTime)
	})

	t.Run("never from pending", func(t *testing.T) {
		item := NewItem("a", "b")
		err := item.Complete(end)
		var invalid *InvalidTransitionError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, StatePending, item.State)
		assert.Nil(t, item.EndTime)
	})

	t.Run("not after stop", func(t *testing.T) {
		item := NewItem("a", "b")
		require.NoError(t, item.Begin(start))
		_, err := item.Halt(start.Add(time.Minute))
		require.NoError(t, err)

		require.Error(t, item.Complete(end))
		assert.Equal(t, StateStopped, item.State)
	})
}

func TestItemFail(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Minute)

	item := NewItem("a", "b")
	require.NoError(t, item.Begin(start))
	require.NoError(t, item.Fail(end))
	assert.Equal(t, StateFailed, item.State)
	assert.Equal(t, end, *item.EndTime)

	t.Run("never from pending", func(t *testing.T) {
		fresh := NewItem("a", "b")
		var invalid *InvalidTransitionError
		require.ErrorAs(t, fresh.Fail(end), &invalid)
		assert.Equal(t, StatePending, fresh.State)
	})
}

func TestItemHalt(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

	t.Run("from replicating", func(t *testing.T) {
		item := NewItem("a", "b")
		require.NoError(t, item.Begin(start))

		changed, err := item.Halt(start.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, StateStopped, item.State)
		require.NotNil(t, item.EndTime)
	})

	t.Run("already stopped is a no-op", func(t *testing.T) {
		item := NewItem("a", "b")
		require.NoError(t, item.Begin(start))
		first := start.Add(time.Minute)
		_, err := item.Halt(first)
		require.NoError(t, err)

		changed, err := item.Halt(start.Add(time.Hour))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, first, *item.EndTime, "a repeated stop must not restamp the end time")
	})

	t.Run("invalid outside replicating", func(t *testing.T) {
		for _, state := range []State{StatePending, StateReplicated, StateFailed} {
			item := NewItem("a", "b")
			item.State = state

			changed, err := item.Halt(start)
			assert.False(t, changed)
			var invalid *InvalidTransitionError
			require.True(t, errors.As(err, &invalid), "halt from %s", state)
			assert.Equal(t, state, item.State)
		}
	})
}

func TestStateTerminal(t *testing.T) {
	assert.False(t, StatePending.Terminal())
	assert.False(t, StateReplicating.Terminal())
	assert.True(t, StateReplicated.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.True(t, StateStopped.Terminal())
}
