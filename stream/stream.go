// Package stream carries typed pipeline updates to the caller: incremental
// text, status banners, a terminal results payload, an optional error, and a
// completion marker. Delivery is at-least-once; consumers must treat a
// duplicate completion marker as harmless.
package stream

import (
	"sync"

	"staysearch/models"
)

// UpdateType discriminates Update payloads.
type UpdateType string

const (
	UpdateText    UpdateType = "text"    // incremental assistant text
	UpdateStatus  UpdateType = "status"  // free-text progress banner
	UpdateResults UpdateType = "results" // terminal ranked-list-or-comparison payload
	UpdateError   UpdateType = "error"   // short, non-technical failure message
	UpdateDone    UpdateType = "done"    // completion marker
)

// Update is one element of the ordered stream.
type Update struct {
	Type    UpdateType      `json:"type"`
	Text    string          `json:"text,omitempty"`
	Results *ResultsPayload `json:"results,omitempty"`
}

// ResultsPayload carries either a single ranked list or a dual-mode
// comparison, never both.
type ResultsPayload struct {
	Mode    string                    `json:"mode"`
	Backend string                    `json:"backend,omitempty"`
	Single  *models.PostProcessResult `json:"single,omitempty"`
	Dual    *DualPayload              `json:"dual,omitempty"`
}

// DualPayload pairs both backends' ranked lists with the comparison verdict.
// No merged list exists in dual mode.
type DualPayload struct {
	Ranked map[string]*models.PostProcessResult `json:"ranked"`
	Eval   *models.EvalResult                   `json:"eval"`
}

// Emitter is the writer side of the stream. The chosen backpressure policy
// is blocking: a send waits for the consumer, so updates are never dropped
// while the consumer is live. A consumer that gives up (deadline lost)
// calls Abandon, which unblocks writers and turns every later send into a
// silent drop. Close is owned by the producer and ends the stream.
type Emitter struct {
	ch        chan Update
	done      chan struct{}
	abandon   sync.Once
	closeOnce sync.Once
}

// NewEmitter creates an emitter; buffer smooths short bursts but the writer
// still blocks once it fills.
func NewEmitter(buffer int) *Emitter {
	return &Emitter{
		ch:   make(chan Update, buffer),
		done: make(chan struct{}),
	}
}

// Updates returns the consumer side of the stream. The channel closes after
// the producer calls Close; ordering matches emission order exactly.
func (e *Emitter) Updates() <-chan Update {
	return e.ch
}

func (e *Emitter) send(u Update) {
	select {
	case <-e.done:
		return
	default:
	}
	select {
	case e.ch <- u:
	case <-e.done:
	}
}

// Text emits an incremental assistant-text chunk.
func (e *Emitter) Text(s string) { e.send(Update{Type: UpdateText, Text: s}) }

// Status emits a named progress event. Advisory only: consumers render it,
// nothing reads it back.
func (e *Emitter) Status(s string) { e.send(Update{Type: UpdateStatus, Text: s}) }

// Results emits the terminal payload.
func (e *Emitter) Results(p *ResultsPayload) { e.send(Update{Type: UpdateResults, Results: p}) }

// Error emits a short failure message.
func (e *Emitter) Error(s string) { e.send(Update{Type: UpdateError, Text: s}) }

// Done emits the completion marker. Emitting it more than once is allowed.
func (e *Emitter) Done() { e.send(Update{Type: UpdateDone}) }

// Abandon signals that the consumer stopped reading. In-flight and future
// sends stop blocking and are discarded. Idempotent.
func (e *Emitter) Abandon() {
	e.abandon.Do(func() { close(e.done) })
}

// Close ends the stream. Only the producing goroutine may call it, after
// its final send. Idempotent.
func (e *Emitter) Close() {
	e.closeOnce.Do(func() { close(e.ch) })
}
