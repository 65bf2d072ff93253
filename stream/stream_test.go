package stream

import (
	"testing"
	"time"

	"staysearch/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(e *Emitter) []Update {
	var updates []Update
	for u := range e.Updates() {
		updates = append(updates, u)
	}
	return updates
}

func TestEmitterPreservesOrder(t *testing.T) {
	e := NewEmitter(16)

	e.Text("Searching Tokyo for 2 guests.")
	e.Status("Connecting...")
	e.Status("Searching...")
	e.Results(&ResultsPayload{Mode: "browser", Backend: "browser", Single: &models.PostProcessResult{}})
	e.Done()
	e.Close()

	updates := drain(e)
	require.Len(t, updates, 5)
	assert.Equal(t, UpdateText, updates[0].Type)
	assert.Equal(t, UpdateStatus, updates[1].Type)
	assert.Equal(t, "Searching...", updates[2].Text)
	assert.Equal(t, UpdateResults, updates[3].Type)
	require.NotNil(t, updates[3].Results)
	assert.Equal(t, "browser", updates[3].Results.Backend)
	assert.Equal(t, UpdateDone, updates[4].Type)
}

func TestEmitterDuplicateDoneIsHarmless(t *testing.T) {
	e := NewEmitter(8)

	e.Status("Ranking results...")
	e.Done()
	e.Done()
	e.Close()

	updates := drain(e)
	require.Len(t, updates, 3)
	assert.Equal(t, UpdateDone, updates[1].Type)
	assert.Equal(t, UpdateDone, updates[2].Type)
}

func TestEmitterBlocksUntilConsumerReads(t *testing.T) {
	e := NewEmitter(0)

	delivered := make(chan struct{})
	go func() {
		e.Status("first")
		e.Status("second")
		close(delivered)
		e.Close()
	}()

	select {
	case <-delivered:
		t.Fatal("writer must block on an unbuffered stream with no reader")
	case <-time.After(50 * time.Millisecond):
	}

	updates := drain(e)
	<-delivered
	require.Len(t, updates, 2)
	assert.Equal(t, "first", updates[0].Text)
	assert.Equal(t, "second", updates[1].Text)
}

func TestAbandonUnblocksAndDropsWrites(t *testing.T) {
	e := NewEmitter(0)

	blocked := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		close(blocked)
		e.Status("never read")
		e.Status("dropped")
		close(finished)
	}()

	<-blocked
	time.Sleep(20 * time.Millisecond)
	e.Abandon()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Abandon must unblock a stuck writer")
	}

	// Later sends are silent drops; none of this may panic or block.
	e.Text("late")
	e.Done()
	e.Abandon()
	e.Close()
}

func TestCloseIsIdempotent(t *testing.T) {
	e := NewEmitter(1)
	e.Done()
	e.Close()
	e.Close()

	updates := drain(e)
	require.Len(t, updates, 1)
}
