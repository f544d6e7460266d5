package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryAllocatesIncreasingIDs(t *testing.T) {
	r := NewRegistry()

	first := r.Start(KindNameSearch)
	second := r.Start(KindContentSearch)
	third := r.Start(KindEnumeration)

	assert.Equal(t, uint64(1), first.ID)
	assert.Less(t, first.ID, second.ID)
	assert.Less(t, second.ID, third.ID)
	assert.Equal(t, 3, r.Active())

	r.Complete(second.ID)
	fourth := r.Start(KindNameSearch)
	assert.Greater(t, fourth.ID, third.ID, "ids are never reused")
}

func TestRegistryCancelIsIdempotent(t *testing.T) {
	r := NewRegistry()
	op := r.Start(KindNameSearch)

	assert.True(t, r.Cancel(op.ID))
	assert.False(t, r.Cancel(op.ID), "second cancel has no additional effect")
	assert.True(t, op.Cancelled())

	select {
	case <-op.Context().Done():
	default:
		t.Fatal("operation context should be done after cancel")
	}

	assert.False(t, r.Cancel(999), "unknown ids are ignored")
}

func TestRegistryCompleteReportsCancellation(t *testing.T) {
	r := NewRegistry()

	running := r.Start(KindContentSearch)
	assert.False(t, r.Complete(running.ID))
	_, ok := r.Lookup(running.ID)
	assert.False(t, ok)
	assert.False(t, r.Cancel(running.ID), "cancel after completion is a no-op")
	assert.False(t, running.Cancelled())

	cancelled := r.Start(KindContentSearch)
	require.True(t, r.Cancel(cancelled.ID))
	assert.True(t, r.Complete(cancelled.ID))
	assert.Equal(t, 0, r.Active())
}

func TestCancelTokenSetsOnce(t *testing.T) {
	token := newCancelToken()
	assert.False(t, token.Cancelled())
	assert.True(t, token.Cancel())
	assert.False(t, token.Cancel())
	assert.True(t, token.Cancelled())
	<-token.Done()
}

func TestKindEventNames(t *testing.T) {
	assert.Equal(t, "search-results", KindNameSearch.EventName())
	assert.Equal(t, "content-search-results", KindContentSearch.EventName())
	assert.Equal(t, "directory-entries", KindEnumeration.EventName())
}
