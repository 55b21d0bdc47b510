// Package engine implements DetectionEngine.Identify: the runtime entry
// point that turns a direction-tagged buffer into an application protocol,
// using a finalized detect.DetectionContext and a caller-owned PerThreadState.
package engine

import (
	"github.com/coregx/protodetect/detect"
	"github.com/coregx/protodetect/internal/detectmetrics"
	"github.com/coregx/protodetect/mpm"
	"github.com/coregx/protodetect/protocol"
	"github.com/coregx/protodetect/simd"
)

// DetectionEngine runs identification against a finalized DetectionContext.
// It holds no mutable state of its own; all per-call working memory lives in
// the caller-supplied PerThreadState.
type DetectionEngine struct {
	ctx *detect.DetectionContext
}

// New returns a DetectionEngine bound to ctx. ctx must already be finalized;
// New does not call Finalize itself since a context is typically shared by
// many engines across many worker threads. It returns detect.ErrNotFinalized
// if ctx has not been finalized.
//
// New records the context's per-direction signature counts as a gauge;
// callers that rebuild a context at runtime should call New again after
// each Finalize to keep the gauge current.
func New(ctx *detect.DetectionContext) (*DetectionEngine, error) {
	if !ctx.Finalized() {
		return nil, detect.ErrNotFinalized
	}
	for _, d := range protocol.Directions {
		detectmetrics.SetSignaturesRegistered(d.String(), ctx.SignatureCount(d))
	}
	return &DetectionEngine{ctx: ctx}, nil
}

// Identify resolves the application protocol observed in buffer, which was
// reassembled in direction from a flow using ipProto as its transport. It
// returns protocol.Unknown if no registered signature verifies.
//
// Identify performs no I/O and never blocks. Its allocations are not limited
// to ts's match queue: the matcher's Search may allocate per call (the
// default Aho-Corasick matcher builds a result slice, and a lowercased copy
// of the buffer when nocase patterns exist), and verifying a nocase
// signature allocates lowercased copies of the window and content. It is safe to call concurrently from multiple goroutines
// provided each uses a distinct PerThreadState bound to the same context.
func (e *DetectionEngine) Identify(ts *PerThreadState, direction protocol.Direction, buffer []byte, ipProto protocol.IPProto) protocol.AppProto {
	matched := false
	defer detectmetrics.Timer(direction.String(), &matched)()

	if e.ctx.SignatureCount(direction) == 0 {
		return protocol.Unknown
	}

	buflen := len(buffer)
	searchLen := buflen
	if maxLen := int(e.ctx.MaxLen(direction)); maxLen < searchLen {
		searchLen = maxLen
	}

	dts := ts.direction(direction)
	dts.queue.Reset()
	defer dts.matcher.CleanupThreadState(dts.thread)

	if _, err := dts.matcher.Search(dts.thread, dts.queue, buffer[:searchLen]); err != nil {
		return protocol.Unknown
	}

	for i := 0; i < dts.queue.Len(); i++ {
		patternID := dts.queue.At(i)
		chain := e.ctx.Chain(direction, patternID)
		for _, sigIdx := range chain {
			sig := e.ctx.Signature(sigIdx)
			if sig.IPProto != ipProto {
				continue
			}
			if int(sig.Pattern.Offset) > buflen {
				continue
			}
			if int(sig.Pattern.Depth) > buflen {
				continue
			}
			window := buffer[sig.Pattern.Offset:sig.Pattern.Depth]
			if verifyContent(window, sig.Pattern.Content, sig.Pattern.NoCase) {
				matched = true
				return sig.AppProto
			}
		}
	}

	return protocol.Unknown
}

// verifyContent reports whether content occurs anywhere within window, the
// single-pattern substring check performed after an MPM hit.
func verifyContent(window, content []byte, nocase bool) bool {
	if !nocase {
		return simd.Memmem(window, content) >= 0
	}
	return simd.Memmem(toLowerCopy(window), toLowerCopy(content)) >= 0
}

func toLowerCopy(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

// perDirectionState is the MPM working state and match queue for one
// direction, allocated only when that direction has registered signatures.
type perDirectionState struct {
	matcher mpm.MultiPatternMatcher
	thread  mpm.ThreadState
	queue   *mpm.MatchQueue
}

// PerThreadState holds the per-direction working state for one worker
// thread: MPM thread state plus a reusable match queue, for both
// directions. It must not be shared across goroutines; a goroutine that
// needs concurrent identification must own its own PerThreadState.
type PerThreadState struct {
	ctx  *detect.DetectionContext
	dirs [2]*perDirectionState
}

// NewPerThreadState allocates working state for every direction that has at
// least one registered signature in ctx. ctx must be finalized; it returns
// detect.ErrNotFinalized otherwise.
func NewPerThreadState(ctx *detect.DetectionContext) (*PerThreadState, error) {
	if !ctx.Finalized() {
		return nil, detect.ErrNotFinalized
	}
	ts := &PerThreadState{ctx: ctx}
	for _, d := range protocol.Directions {
		if ctx.SignatureCount(d) == 0 {
			continue
		}
		matcher := ctx.Matcher(d)
		ts.dirs[d] = &perDirectionState{
			matcher: matcher,
			thread:  matcher.InitThreadState(),
			queue:   mpm.NewMatchQueue(int(ctx.MaxPatternID())),
		}
	}
	return ts, nil
}

// Close tears down the MPM thread state held for every direction. It must
// be called exactly once when the owning worker thread is retired.
func (ts *PerThreadState) Close() {
	for _, d := range protocol.Directions {
		dts := ts.dirs[d]
		if dts == nil {
			continue
		}
		dts.matcher.DestroyThreadState(dts.thread)
	}
}

// direction returns the perDirectionState for d, growing its match queue to
// the context's current max pattern-id on first use if the context grew
// since ts was created.
func (ts *PerThreadState) direction(d protocol.Direction) *perDirectionState {
	dts := ts.dirs[d]
	dts.queue.Grow(int(ts.ctx.MaxPatternID()))
	return dts
}
