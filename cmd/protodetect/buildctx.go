package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/coregx/protodetect/detect"
	"github.com/coregx/protodetect/internal/sigset"
	"github.com/coregx/protodetect/protocol"
)

// buildContext registers the built-in pattern set (unless suppressed) plus
// any signature-set file given via --sigset, then finalizes the resulting
// DetectionContext.
func buildContext(logger *zap.Logger) (*detect.DetectionContext, error) {
	ctx := detect.NewDetectionContext(detect.WithLogger(logger))

	if !noBuiltins {
		if err := detect.RegisterBuiltins(ctx); err != nil {
			return nil, fmt.Errorf("register builtins: %w", err)
		}
	}

	if sigsetPath != "" {
		if err := sigset.LoadInto(ctx, sigsetPath); err != nil {
			return nil, fmt.Errorf("load signature set: %w", err)
		}
	}

	if err := ctx.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize: %w", err)
	}
	return ctx, nil
}

func printSummary(ctx *detect.DetectionContext) {
	fmt.Printf("build id: %s\n", ctx.BuildID())
	for _, d := range protocol.Directions {
		fmt.Printf("  %-9s signatures=%-4d min_len=%-3d max_len=%d\n",
			d, ctx.SignatureCount(d), ctx.MinLen(d), ctx.MaxLen(d))
	}
}
