package router

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Entry is one history record. It carries everything needed to replay a
// navigation: the URL, the target selectors, the HTTP verb and the body.
type Entry struct {
	ID      string   `msgpack:"id"`
	URL     string   `msgpack:"url"`
	Targets []string `msgpack:"targets,omitempty"`
	Method  string   `msgpack:"method,omitempty"`
	Body    any      `msgpack:"body,omitempty"`
}

// Encode serializes e for storage as history state.
func (e Entry) Encode() ([]byte, error) { return msgpack.Marshal(e) }

// DecodeEntry is the inverse of Entry.Encode.
func DecodeEntry(b []byte) (Entry, error) {
	var e Entry
	if err := msgpack.Unmarshal(b, &e); err != nil {
		return Entry{}, fmt.Errorf("router: decode history entry: %w", err)
	}
	return e, nil
}

// History is a session history stack. Entries are stored serialized, the
// way a browser stores history state.
type History struct {
	states [][]byte
	pos    int
}

// NewHistory creates an empty history.
func NewHistory() *History { return &History{pos: -1} }

// Len returns the number of entries.
func (h *History) Len() int { return len(h.states) }

// Push appends e after the current entry, discarding any forward entries.
func (h *History) Push(e Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	b, err := e.Encode()
	if err != nil {
		return err
	}
	h.states = append(h.states[:h.pos+1], b)
	h.pos = len(h.states) - 1
	return nil
}

// Replace overwrites the current entry, or pushes when empty.
func (h *History) Replace(e Entry) error {
	if h.pos < 0 {
		return h.Push(e)
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	b, err := e.Encode()
	if err != nil {
		return err
	}
	h.states[h.pos] = b
	return nil
}

// Current returns the current entry.
func (h *History) Current() (Entry, bool) {
	if h.pos < 0 {
		return Entry{}, false
	}
	return h.at(h.pos)
}

// Back moves to the previous entry and returns it.
func (h *History) Back() (Entry, bool) {
	if h.pos <= 0 {
		return Entry{}, false
	}
	h.pos--
	return h.at(h.pos)
}

// Forward moves to the next entry and returns it.
func (h *History) Forward() (Entry, bool) {
	if h.pos+1 >= len(h.states) {
		return Entry{}, false
	}
	h.pos++
	return h.at(h.pos)
}

func (h *History) at(i int) (Entry, bool) {
	e, err := DecodeEntry(h.states[i])
	if err != nil {
		return Entry{}, false
	}
	return e, true
}
