package mpm

import (
	"bytes"
	"errors"
	"sync"

	"github.com/cloudflare/ahocorasick"
)

// ErrAlreadyPrepared indicates AddPattern was called after Prepare.
var ErrAlreadyPrepared = errors.New("mpm: AddPattern called after Prepare")

// ErrNotPrepared indicates Search was called before Prepare.
var ErrNotPrepared = errors.New("mpm: Search called before Prepare")

// staged pattern registered before Prepare builds the automaton.
type staged struct {
	content []byte
	nocase  bool
}

// AhoCorasickMatcher is the default MultiPatternMatcher, backed by an
// Aho-Corasick automaton. Patterns are staged by pattern-id during the
// build phase; Prepare compacts them into two dictionaries — one for
// case-sensitive patterns, one (lowercased) for case-insensitive ones —
// each paired with a slice mapping the automaton's dictionary index back
// to the original pattern-id, since cloudflare/ahocorasick reports matches
// as indices into the dictionary it was built from, not arbitrary ids.
//
// An AhoCorasickMatcher is immutable and safe for concurrent Search calls
// once Prepare has returned. ThreadState carries no mutable data because
// Search uses Matcher.MatchThreadSafe, which keeps no state in the shared
// automaton between calls (Matcher.Match does, and is not used), but the type
// still satisfies mpm.ThreadState for symmetry with matchers that do need
// per-goroutine scratch space.
type AhoCorasickMatcher struct {
	mu       sync.Mutex
	staged   map[uint32]staged
	prepared bool

	exact     *ahocorasick.Matcher
	exactIDs  []uint32
	nocase    *ahocorasick.Matcher
	nocaseIDs []uint32
}

// NewAhoCorasickMatcher returns an empty, unprepared matcher.
func NewAhoCorasickMatcher() *AhoCorasickMatcher {
	return &AhoCorasickMatcher{staged: make(map[uint32]staged)}
}

// AddPattern stages content under id for the next Prepare call.
func (m *AhoCorasickMatcher) AddPattern(content []byte, offset, depth uint16, id uint32, nocase bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.prepared {
		return ErrAlreadyPrepared
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	m.staged[id] = staged{content: cp, nocase: nocase}
	return nil
}

// Prepare builds the Aho-Corasick automaton(s) from staged patterns.
func (m *AhoCorasickMatcher) Prepare() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.prepared {
		return nil
	}

	// Stable iteration order (by pattern-id) keeps automaton construction,
	// and therefore match-report order, deterministic across rebuilds.
	ids := make([]uint32, 0, len(m.staged))
	for id := range m.staged {
		ids = append(ids, id)
	}
	sortUint32(ids)

	var exactDict, nocaseDict [][]byte
	for _, id := range ids {
		s := m.staged[id]
		if s.nocase {
			nocaseDict = append(nocaseDict, bytes.ToLower(s.content))
			m.nocaseIDs = append(m.nocaseIDs, id)
		} else {
			exactDict = append(exactDict, s.content)
			m.exactIDs = append(m.exactIDs, id)
		}
	}

	if len(exactDict) > 0 {
		m.exact = ahocorasick.NewMatcher(exactDict)
	}
	if len(nocaseDict) > 0 {
		m.nocase = ahocorasick.NewMatcher(nocaseDict)
	}

	m.prepared = true
	m.staged = nil
	return nil
}

func sortUint32(s []uint32) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// InitThreadState returns a no-op ThreadState; Matcher.MatchThreadSafe
// carries no mutable state across calls.
func (m *AhoCorasickMatcher) InitThreadState() ThreadState {
	return struct{}{}
}

// DestroyThreadState is a no-op for this matcher.
func (m *AhoCorasickMatcher) DestroyThreadState(ThreadState) {}

// CleanupThreadState is a no-op for this matcher.
func (m *AhoCorasickMatcher) CleanupThreadState(ThreadState) {}

// Search runs the case-sensitive automaton, then the case-insensitive one
// (if any nocase patterns were registered), appending matched pattern-ids
// to queue in that order.
func (m *AhoCorasickMatcher) Search(_ ThreadState, queue *MatchQueue, buffer []byte) (int, error) {
	if !m.prepared {
		return 0, ErrNotPrepared
	}

	start := queue.Len()

	if m.exact != nil {
		for _, idx := range m.exact.MatchThreadSafe(buffer) {
			queue.Append(m.exactIDs[idx])
		}
	}
	if m.nocase != nil {
		lower := bytes.ToLower(buffer)
		for _, idx := range m.nocase.MatchThreadSafe(lower) {
			queue.Append(m.nocaseIDs[idx])
		}
	}

	return queue.Len() - start, nil
}
