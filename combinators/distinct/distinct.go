// Package distinct wraps a one-argument transform so repeated arguments are
// suppressed.
//
// The wrapper remembers every argument it has admitted, under a pluggable
// equality kind, and echoes the transformed value only for arguments it has
// not seen before. Membership is always tested on the raw argument: the
// transform shapes what is echoed for a newly seen argument and never
// affects whether a later argument counts as already seen.
package distinct

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/on-the-ground/combinat_ive_go/shared/equality"
)

// New returns a function that admits each equality class of arguments once.
//
// On a previously unseen argument a, the returned function computes
// transform(a), records a → transform(a), and returns (transform(a), true).
// On an argument equal to one already seen under kind, it returns
// (zero, false) and does not call transform.
//
// Construction fails with equality.ErrUnsupportedKind before any call is
// possible when kind is not one of the supported equality kinds.
//
// The returned function performs no internal synchronization: two goroutines
// racing on the same unseen argument may both compute and both report true,
// with the last writer's value recorded. Callers needing atomicity must
// serialize externally.
func New[K, V any](transform func(K) V, kind equality.Kind) (func(K) (V, bool), error) {
	seen, err := equality.NewMap[V](kind)
	if err != nil {
		return nil, fmt.Errorf("distinct: %w", err)
	}

	logger := zap.L().With(
		zap.String("combinator", "distinct"),
		zap.String("instance_id", uuid.New().String()),
	)

	return func(arg K) (V, bool) {
		if _, ok := seen.Load(arg); ok {
			var zero V
			return zero, false
		}
		val := transform(arg)
		seen.Store(arg, val)
		logger.Debug("new equality class admitted", zap.Int("seen", seen.Len()))
		return val, true
	}, nil
}
