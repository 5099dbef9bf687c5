package queue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGet_FIFO(t *testing.T) {
	q := New[int](4)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		require.NoError(t, q.Put(ctx, i))
	}

	for i := 1; i <= 3; i++ {
		got, err := q.Get(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
}

func TestNew_ClampsCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, New[int](0).Cap())
	assert.Equal(t, DefaultCapacity, New[int](-5).Cap())
	assert.Equal(t, 7, New[int](7).Cap())
}

func TestPut_BlocksWhenFull(t *testing.T) {
	q := New[int](1)
	ctx := context.Background()
	require.NoError(t, q.Put(ctx, 1))

	// The queue is at capacity: a second Put must block until a Get frees
	// a slot, never grow past capacity.
	unblocked := make(chan error, 1)
	go func() {
		unblocked <- q.Put(ctx, 2)
	}()

	select {
	case <-unblocked:
		t.Fatal("Put returned while the queue was full")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, 1, q.Len())

	got, err := q.Get(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	select {
	case err := <-unblocked:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Put did not unblock after space freed")
	}
}

func TestPut_ContextCancelled(t *testing.T) {
	q := New[int](1)
	require.NoError(t, q.Put(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Put(ctx, 2)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGet_Timeout(t *testing.T) {
	q := New[int](1)

	start := time.Now()
	_, err := q.Get(context.Background(), 30*time.Millisecond)
	require.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), time.Second)
}

func TestGet_ReturnsImmediatelyWhenItemPresent(t *testing.T) {
	q := New[int](1)
	require.NoError(t, q.Put(context.Background(), 42))

	got, err := q.Get(context.Background(), time.Nanosecond)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestClear_DropsQueuedItems(t *testing.T) {
	q := New[int](8)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		require.NoError(t, q.Put(ctx, i))
	}

	assert.Equal(t, 5, q.Clear())
	assert.Equal(t, 0, q.Len())

	// Queue keeps working after a clear.
	require.NoError(t, q.Put(ctx, 99))
	got, err := q.Get(ctx, time.Second)
	require.NoError(t, err)
	assert.Equal(t, 99, got)
}

func TestClose_UnblocksWaitingGet(t *testing.T) {
	q := New[int](1)

	done := make(chan error, 1)
	go func() {
		_, err := q.Get(context.Background(), 0)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrClosed)
	case <-time.After(time.Second):
		t.Fatal("Get did not unblock after Close")
	}
}

func TestClose_RejectsFurtherPuts(t *testing.T) {
	q := New[int](4)
	q.Close()
	require.ErrorIs(t, q.Put(context.Background(), 1), ErrClosed)
}

func TestClose_AllowsFinalDrain(t *testing.T) {
	q := New[int](4)
	ctx := context.Background()
	require.NoError(t, q.Put(ctx, 1))
	require.NoError(t, q.Put(ctx, 2))

	q.Close()

	got, err := q.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, got)

	got, err = q.Get(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, got)

	_, err = q.Get(ctx, 0)
	require.ErrorIs(t, err, ErrClosed)
}

func TestClose_Idempotent(t *testing.T) {
	q := New[int](1)
	q.Close()
	q.Close()
}
