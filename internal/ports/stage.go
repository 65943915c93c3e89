// Package ports defines the interfaces between the aggregation engine's
// domain/engine layers and its infrastructure: pipeline stages, the
// collaborator stores the engine consumes, and observability hooks.
// These interfaces enable dependency inversion and make the engine
// testable without real collaborators.
package ports

import (
	"context"

	"github.com/orbita-hq/feedback-engine/internal/domain"
)

// Stage is one step of the aggregation pipeline. Each stage reads typed
// values from the run State, performs its transformation, and returns a
// new State with its output added. Stages must be stateless and safe
// for concurrent use: many runs execute the same stage instances in
// parallel.
type Stage interface {
	// Name returns the stage's unique identifier, used for logging,
	// metrics labels, and error messages.
	Name() string

	// Execute performs the stage's transformation. The input State is
	// never modified; results come back on the returned State.
	// Stages should respect context cancellation between units of work.
	Execute(ctx context.Context, state domain.State) (domain.State, error)

	// Validate checks that the stage is properly configured.
	// It is called once at pipeline construction, not per run.
	Validate() error
}
