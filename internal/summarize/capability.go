package summarize

import (
	"context"
	"errors"
)

var ErrCapability = errors.New("summarization failed")

// Request is what a summarization backend receives. Deterministic asks the
// backend to disable sampling.
type Request struct {
	Text          string
	MinLength     int
	Deterministic bool
}

// Capability is an external summarization engine.
type Capability interface {
	Summarize(ctx context.Context, req Request) (string, error)
	Name() string
}
