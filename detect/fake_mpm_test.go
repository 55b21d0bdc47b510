package detect

import (
	"bytes"
	"sort"

	"github.com/coregx/protodetect/mpm"
)

// fakeMatcher is a literal-scan MultiPatternMatcher used to exercise
// DetectionContext independently of the Aho-Corasick backend: it reports a
// pattern-id matched if its content appears anywhere in the buffer.
type fakeMatcher struct {
	patterns map[uint32][]byte
	prepared bool
}

func newFakeMatcher() mpm.MultiPatternMatcher {
	return &fakeMatcher{patterns: make(map[uint32][]byte)}
}

func (f *fakeMatcher) AddPattern(content []byte, offset, depth uint16, id uint32, nocase bool) error {
	cp := make([]byte, len(content))
	copy(cp, content)
	f.patterns[id] = cp
	return nil
}

func (f *fakeMatcher) Prepare() error {
	f.prepared = true
	return nil
}

func (f *fakeMatcher) InitThreadState() mpm.ThreadState { return struct{}{} }
func (f *fakeMatcher) DestroyThreadState(mpm.ThreadState) {}
func (f *fakeMatcher) CleanupThreadState(mpm.ThreadState) {}

func (f *fakeMatcher) Search(_ mpm.ThreadState, queue *mpm.MatchQueue, buffer []byte) (int, error) {
	ids := make([]uint32, 0, len(f.patterns))
	for id := range f.patterns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	start := queue.Len()
	for _, id := range ids {
		if bytes.Contains(buffer, f.patterns[id]) {
			queue.Append(id)
		}
	}
	return queue.Len() - start, nil
}
