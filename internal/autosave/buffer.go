// Package autosave buffers cell edits and writes them behind a debounce
// window. Edits stay visible to readers until persisted data is observed to
// match them, so polling clients never see a value flip back while a write
// is in flight.
package autosave

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the save state of one row.
type State int

const (
	// Clean rows have no retained edits.
	Clean State = iota
	// Editing rows have edits that have not been handed to a save yet.
	Editing
	// Saving rows have a write in flight or are awaiting confirmation.
	Saving
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Saving:
		return "saving"
	default:
		return "clean"
	}
}

// MarshalText renders the state by name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Edit is a single cell change.
type Edit struct {
	RowID string `json:"rowId" validate:"required"`
	Field string `json:"field" validate:"required"`
	Value any    `json:"value"`
}

// Patch maps field names to edited values for one row.
type Patch map[string]any

// Matcher is a persisted row that can be compared against a retained edit.
type Matcher interface {
	Matches(field string, value any) bool
}

// SaveFunc persists the merged patches and returns the stored rows by id.
// Rows missing from the result are treated as deleted.
type SaveFunc func(ctx context.Context, patches map[string]Patch) (map[string]Matcher, error)

// Status is a point-in-time view of the buffer.
type Status struct {
	Pending   map[string]Patch `json:"pending"`
	States    map[string]State `json:"states"`
	LastSave  *time.Time       `json:"lastSave,omitempty"`
	LastError string           `json:"lastError,omitempty"`
}

// Buffer merges edits per row and saves them after a quiet period.
type Buffer struct {
	delay time.Duration
	save  SaveFunc
	log   zerolog.Logger

	saveMu sync.Mutex // one save in flight at a time

	mu       sync.Mutex
	edits    map[string]Patch
	states   map[string]State
	gens     map[string]uint64
	timer    *time.Timer
	closed   bool
	lastErr  error
	lastSave time.Time
}

// NewBuffer creates a buffer that calls save delay after the last edit.
func NewBuffer(delay time.Duration, save SaveFunc, log zerolog.Logger) *Buffer {
	return &Buffer{
		delay:  delay,
		save:   save,
		log:    log.With().Str("component", "autosave").Logger(),
		edits:  make(map[string]Patch),
		states: make(map[string]State),
		gens:   make(map[string]uint64),
	}
}

// Apply merges edits into the local edit map and re-arms the debounce timer.
// Later edits to the same cell win.
func (b *Buffer) Apply(edits ...Edit) {
	if len(edits) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, e := range edits {
		patch, ok := b.edits[e.RowID]
		if !ok {
			patch = make(Patch)
			b.edits[e.RowID] = patch
		}
		patch[e.Field] = e.Value
		b.states[e.RowID] = Editing
		b.gens[e.RowID]++
	}
	b.scheduleLocked()
}

func (b *Buffer) scheduleLocked() {
	if b.closed {
		return
	}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.delay, b.onTimer)
}

func (b *Buffer) onTimer() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := b.flush(ctx); err != nil {
		b.log.Error().Err(err).Msg("debounced save failed, edits retained")
	}
}

// Flush saves pending edits immediately.
func (b *Buffer) Flush(ctx context.Context) error {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()
	return b.flush(ctx)
}

// Close flushes pending edits and stops scheduling further saves.
func (b *Buffer) Close(ctx context.Context) error {
	b.mu.Lock()
	b.closed = true
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()
	return b.flush(ctx)
}

func (b *Buffer) flush(ctx context.Context) error {
	b.saveMu.Lock()
	defer b.saveMu.Unlock()

	b.mu.Lock()
	snapshot := make(map[string]Patch)
	gens := make(map[string]uint64)
	for rowID, state := range b.states {
		if state != Editing {
			continue
		}
		snapshot[rowID] = clonePatch(b.edits[rowID])
		gens[rowID] = b.gens[rowID]
		b.states[rowID] = Saving
	}
	b.mu.Unlock()

	if len(snapshot) == 0 {
		return nil
	}

	start := time.Now()
	persisted, err := b.save(ctx, snapshot)

	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.lastErr = err
		for rowID := range snapshot {
			if b.states[rowID] == Saving {
				b.states[rowID] = Editing
			}
		}
		b.scheduleLocked()
		return err
	}

	b.lastErr = nil
	b.lastSave = time.Now()
	for rowID := range snapshot {
		row, ok := persisted[rowID]
		if !ok {
			b.dropLocked(rowID)
			continue
		}
		b.confirmLocked(rowID, row)
		if _, retained := b.edits[rowID]; retained && b.gens[rowID] != gens[rowID] {
			b.states[rowID] = Editing
		}
	}

	b.log.Debug().
		Int("rows", len(snapshot)).
		Dur("duration", time.Since(start)).
		Msg("autosave flushed")
	return nil
}

// Confirm clears retained edits that the given persisted rows already
// reflect. Rows with a write in flight or unsaved edits are left alone.
func (b *Buffer) Confirm(rows map[string]Matcher) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for rowID, row := range rows {
		if b.states[rowID] != Saving {
			continue
		}
		b.confirmLocked(rowID, row)
	}
}

func (b *Buffer) confirmLocked(rowID string, row Matcher) {
	patch := b.edits[rowID]
	for field, value := range patch {
		if row.Matches(field, value) {
			delete(patch, field)
		}
	}
	if len(patch) == 0 {
		b.dropLocked(rowID)
	}
}

func (b *Buffer) dropLocked(rowID string) {
	delete(b.edits, rowID)
	delete(b.states, rowID)
	delete(b.gens, rowID)
}

// Discard forgets retained edits for the given rows, e.g. after deletion.
func (b *Buffer) Discard(rowIDs ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range rowIDs {
		b.dropLocked(id)
	}
}

// Overlay returns a copy of the retained edits of a row.
func (b *Buffer) Overlay(rowID string) (Patch, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	patch, ok := b.edits[rowID]
	if !ok {
		return nil, false
	}
	return clonePatch(patch), true
}

// State returns the save state of a row.
func (b *Buffer) State(rowID string) State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[rowID]
}

// LastError returns the error of the most recent failed save, if the save
// after it has not succeeded yet.
func (b *Buffer) LastError() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// Status returns a copy of the retained edits and row states.
func (b *Buffer) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := Status{
		Pending: make(map[string]Patch, len(b.edits)),
		States:  make(map[string]State, len(b.states)),
	}
	for id, p := range b.edits {
		st.Pending[id] = clonePatch(p)
	}
	for id, s := range b.states {
		st.States[id] = s
	}
	if !b.lastSave.IsZero() {
		ts := b.lastSave
		st.LastSave = &ts
	}
	if b.lastErr != nil {
		st.LastError = b.lastErr.Error()
	}
	return st
}

func clonePatch(p Patch) Patch {
	out := make(Patch, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
