// Package detect implements the DetectionContext: the immutable-after-build
// container that holds, per direction, the multi-pattern matcher, the
// pattern-id to signature-chain map, and the min_len/max_len bounds that
// steer the reassembler.
package detect

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/coregx/protodetect/mpm"
	"github.com/coregx/protodetect/pattern"
	"github.com/coregx/protodetect/protocol"
)

// MatcherFactory constructs a fresh, unprepared MultiPatternMatcher. The
// default factory returns an *mpm.AhoCorasickMatcher; tests substitute a
// fake to exercise the MPM contract in isolation.
type MatcherFactory func() mpm.MultiPatternMatcher

func defaultMatcherFactory() mpm.MultiPatternMatcher {
	return mpm.NewAhoCorasickMatcher()
}

// directionTable is the per-direction build/query state described in the
// data model: the direction's matcher, its min/max inspection bounds, and
// the pattern-id -> signature-chain map (a slice of signature indices per
// pattern-id, chain order newest-first, dense over the whole interner's id
// space since pattern-ids are shared across both directions).
type directionTable struct {
	matcher        mpm.MultiPatternMatcher
	minLen         uint16
	maxLen         uint16
	signatureCount int
	chains         [][]int32 // index: pattern-id -> signature indices, newest first
}

// DetectionContext is the immutable-after-Finalize container owning all
// patterns, signatures, and direction tables. It is constructed by a
// builder (Add/Finalize) and then shared read-only by any number of
// DetectionEngine workers.
type DetectionContext struct {
	interner   *pattern.Interner
	directions [2]*directionTable // indexed by protocol.Direction
	signatures []Signature

	finalized bool
	buildID   uuid.UUID
	logger    *zap.Logger
	newMatch  MatcherFactory
}

// Option configures a DetectionContext at construction time.
type Option func(*DetectionContext)

// WithLogger attaches a structured logger used for build-time and
// lifecycle events. identify itself never logs on its hot path.
func WithLogger(logger *zap.Logger) Option {
	return func(ctx *DetectionContext) {
		ctx.logger = logger
	}
}

// WithMatcherFactory overrides the default Aho-Corasick-backed matcher,
// primarily for tests.
func WithMatcherFactory(factory MatcherFactory) Option {
	return func(ctx *DetectionContext) {
		ctx.newMatch = factory
	}
}

// NewDetectionContext returns an empty, unfinalized context ready for Add
// calls.
func NewDetectionContext(opts ...Option) *DetectionContext {
	ctx := &DetectionContext{
		interner: pattern.NewInterner(),
		newMatch: defaultMatcherFactory,
	}
	for i := range ctx.directions {
		ctx.directions[i] = &directionTable{
			minLen: InspectBytes,
			maxLen: InspectBytes,
		}
	}
	for _, opt := range opts {
		opt(ctx)
	}
	if ctx.logger == nil {
		ctx.logger = zap.NewNop()
	}
	for _, d := range ctx.directions {
		d.matcher = ctx.newMatch()
	}
	return ctx
}

// Add registers a pattern-notation string as a signature for ipProto /
// appProto in the given direction. depth and offset define the inspection
// window the pattern's content must fall within.
//
// Add returns *BuildError wrapping ErrAlreadyFinalized if the context has
// already been finalized, or wrapping ErrInvalidPattern / ErrOutOfMemory on
// failure to parse or register the pattern.
func (ctx *DetectionContext) Add(ipProto protocol.IPProto, appProto protocol.AppProto, notation string, depth, offset uint16, direction protocol.Direction, nocase bool) error {
	if ctx.finalized {
		return &BuildError{Direction: direction.String(), Err: ErrAlreadyFinalized}
	}

	content, err := pattern.Parse(notation)
	if err != nil {
		return &BuildError{Direction: direction.String(), Err: err}
	}

	p := pattern.Pattern{Content: content, Offset: offset, Depth: depth, NoCase: nocase}
	if err := p.Validate(); err != nil {
		return &BuildError{Direction: direction.String(), Err: err}
	}

	id := ctx.interner.Intern(p.Content, p.Offset, p.Depth, p.NoCase)

	dir := ctx.directions[direction]
	if err := dir.matcher.AddPattern(p.Content, p.Offset, p.Depth, id, p.NoCase); err != nil {
		return &BuildError{Direction: direction.String(), Err: fmt.Errorf("%w: %v", ErrOutOfMemory, err)}
	}

	if depth > dir.maxLen {
		dir.maxLen = depth
	}
	if depth < dir.minLen {
		dir.minLen = depth
	}

	sig := Signature{
		IPProto:   ipProto,
		AppProto:  appProto,
		Direction: direction,
		Pattern:   p,
		PatternID: id,
	}
	ctx.signatures = append(ctx.signatures, sig)
	dir.signatureCount++

	ctx.logger.Debug("registered signature",
		zap.String("direction", direction.String()),
		zap.String("app_proto", appProto.String()),
		zap.Uint32("pattern_id", id),
		zap.Uint16("offset", offset),
		zap.Uint16("depth", depth),
	)

	return nil
}

// Finalize transitions the context from mutable build to immutable query:
// it prepares both directions' matchers and builds the pattern-id ->
// signature-chain maps. No new signatures may be added afterward.
//
// Finalize is idempotent: calling it more than once is a no-op.
func (ctx *DetectionContext) Finalize() error {
	if ctx.finalized {
		return nil
	}

	for d, dir := range ctx.directions {
		if err := dir.matcher.Prepare(); err != nil {
			return &BuildError{Direction: protocol.Direction(d).String(), Err: fmt.Errorf("%w: %v", ErrOutOfMemory, err)}
		}
	}

	maxID := ctx.interner.MaxID()
	for _, dir := range ctx.directions {
		dir.chains = make([][]int32, maxID)
	}

	for i, sig := range ctx.signatures {
		dir := ctx.directions[sig.Direction]
		dir.chains[sig.PatternID] = append([]int32{int32(i)}, dir.chains[sig.PatternID]...)
	}

	ctx.buildID = uuid.New()
	ctx.finalized = true

	for d, dir := range ctx.directions {
		ctx.logger.Info("detection context finalized",
			zap.String("build_id", ctx.buildID.String()),
			zap.String("direction", protocol.Direction(d).String()),
			zap.Uint16("min_len", dir.minLen),
			zap.Uint16("max_len", dir.maxLen),
			zap.Int("signature_count", dir.signatureCount),
		)
	}

	return nil
}

// Finalized reports whether Finalize has completed.
func (ctx *DetectionContext) Finalized() bool {
	return ctx.finalized
}

// BuildID returns the identifier stamped at Finalize and included in
// Finalize's log lines. Identify does not log it and the metrics carry no
// build-id label. It is the zero UUID before Finalize.
func (ctx *DetectionContext) BuildID() uuid.UUID {
	return ctx.buildID
}

// MinLen returns the minimum initial chunk size the reassembler must
// deliver for direction before identify can be expected to resolve
// anything, per the one-time notification Finalize performs.
func (ctx *DetectionContext) MinLen(direction protocol.Direction) uint16 {
	return ctx.directions[direction].minLen
}

// MaxLen returns the maximum number of bytes identify will ever inspect
// for direction.
func (ctx *DetectionContext) MaxLen(direction protocol.Direction) uint16 {
	return ctx.directions[direction].maxLen
}

// SignatureCount returns the number of signatures registered for direction.
func (ctx *DetectionContext) SignatureCount(direction protocol.Direction) int {
	return ctx.directions[direction].signatureCount
}

// Matcher returns direction's MultiPatternMatcher. Valid only after
// Finalize; the engine package uses it to build per-thread matcher state.
func (ctx *DetectionContext) Matcher(direction protocol.Direction) mpm.MultiPatternMatcher {
	return ctx.directions[direction].matcher
}

// Chain returns the signature-chain for patternID in direction: indices
// into Signatures, newest-registered first. Empty if no signature shares
// that pattern-id.
func (ctx *DetectionContext) Chain(direction protocol.Direction, patternID uint32) []int32 {
	dir := ctx.directions[direction]
	if int(patternID) >= len(dir.chains) {
		return nil
	}
	return dir.chains[patternID]
}

// Signature returns the signature at index i, as referenced by Chain.
func (ctx *DetectionContext) Signature(i int32) Signature {
	return ctx.signatures[i]
}

// MaxPatternID returns one past the highest pattern-id interned across
// both directions, i.e. the required match-queue capacity.
func (ctx *DetectionContext) MaxPatternID() uint32 {
	return ctx.interner.MaxID()
}
