package events

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/spt/internal/shared"
)

// Store is the append-only, lock-guarded event log. It owns the envelope
// collection exclusively: callers append domain events and read envelopes
// or decoded events back, never the backing slice itself.
//
// The lock makes the store safely shareable with a concurrent reader (a
// progress display polling Len while the sync loop appends); it is not a
// multi-writer coordination mechanism.
type Store struct {
	mu   sync.Mutex
	evts []Envelope
	last time.Time
}

// scanner line capacity; playlist creation events carry full track lists.
const maxRecordSize = 16 << 20

// New creates an empty in-memory event store.
func New() *Store {
	return &Store{}
}

// Load reads a persisted event log. The file must exist and every line
// must parse; use [LoadOrCreate] where a missing log means "first run".
func Load(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	defer f.Close()

	store := New()
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64<<10), maxRecordSize)

	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var env Envelope
		if err := json.Unmarshal(scanner.Bytes(), &env); err != nil {
			return nil, fmt.Errorf("%w: event log %s line %d: %v", shared.ErrParse, path, line, err)
		}
		store.evts = append(store.evts, env)
		if env.Timestamp.After(store.last) {
			store.last = env.Timestamp
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}

	return store, nil
}

// LoadOrCreate reads a persisted event log, degrading a missing file to an
// empty store. Any other load failure still surfaces.
func LoadOrCreate(path string) (*Store, error) {
	store, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	return store, err
}

// Append wraps a domain event into an envelope, assigning its event id and
// timestamp, and appends it to the log. Validation is the aggregate's job;
// append itself only fails if the event cannot be encoded.
//
// Timestamps are monotonically non-decreasing within one store lifetime,
// so the log's natural order is also timestamp order.
func (s *Store) Append(evt Event) (Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if now.Before(s.last) {
		now = s.last
	}

	env, err := newEnvelope(evt, now)
	if err != nil {
		return Envelope{}, err
	}

	s.last = now
	s.evts = append(s.evts, env)
	return env, nil
}

// Save writes the full log to path as newline-delimited JSON, replacing
// the previous file via a temp-file rename. Unchanged envelopes serialize
// back byte-for-byte, so a load/save cycle is idempotent.
func (s *Store) Save(path string) error {
	s.mu.Lock()
	envelopes := make([]Envelope, len(s.evts))
	copy(envelopes, s.evts)
	s.mu.Unlock()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create event log: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, env := range envelopes {
		data, err := json.Marshal(env)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("failed to encode envelope %s: %w", env.EventID, err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write event log: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to flush event log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close event log: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace event log: %w", err)
	}

	return nil
}

// Len returns the number of envelopes in the log.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.evts)
}

// All returns a copy of every envelope in append order.
func (s *Store) All() []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()
	envelopes := make([]Envelope, len(s.evts))
	copy(envelopes, s.evts)
	return envelopes
}

// Origins returns the distinct origin ids present in the log, in first
// appearance order.
func (s *Store) Origins() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(s.evts))
	var origins []string
	for _, env := range s.evts {
		if !seen[env.OriginID] {
			seen[env.OriginID] = true
			origins = append(origins, env.OriginID)
		}
	}
	return origins
}

// ByOrigin returns the decoded events for one origin id in append order,
// the sequence the aggregate replays from.
func (s *Store) ByOrigin(originID string) ([]Event, error) {
	return s.filter(originID, func(Envelope) bool { return true })
}

// ByOriginRange returns the decoded events for one origin id whose
// timestamps fall inside [start, end], in append order.
func (s *Store) ByOriginRange(originID string, start, end time.Time) ([]Event, error) {
	return s.filter(originID, func(env Envelope) bool {
		return !env.Timestamp.Before(start) && !env.Timestamp.After(end)
	})
}

// EnvelopesByOrigin returns the raw envelopes for one origin id in append
// order, for inspection without decoding.
func (s *Store) EnvelopesByOrigin(originID string) []Envelope {
	s.mu.Lock()
	defer s.mu.Unlock()

	var envelopes []Envelope
	for _, env := range s.evts {
		if env.OriginID == originID {
			envelopes = append(envelopes, env)
		}
	}
	return envelopes
}

func (s *Store) filter(originID string, keep func(Envelope) bool) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evts []Event
	for _, env := range s.evts {
		if env.OriginID != originID || !keep(env) {
			continue
		}
		evt, err := env.Event()
		if err != nil {
			return nil, err
		}
		evts = append(evts, evt)
	}
	return evts, nil
}
