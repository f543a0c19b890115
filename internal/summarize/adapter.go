package summarize

import (
	"context"
	"fmt"
	"time"

	"github.com/nikhilbhutani/voicenews/pkg/textutil"
)

// Mode records how a summary was produced.
type Mode string

const (
	ModeSkipped     Mode = "skipped"
	ModePassthrough Mode = "passthrough"
	ModeModel       Mode = "model"
	ModeFailed      Mode = "failed"
)

type Options struct {
	WordThreshold int           // texts with fewer words are returned unchanged
	MinLength     int           // min_length hint for the capability
	Timeout       time.Duration // per capability call, 0 means none
}

// Adapter applies the summarization policy in front of a Capability.
type Adapter struct {
	capability Capability
	opts       Options
}

func NewAdapter(c Capability, opts Options) *Adapter {
	if opts.WordThreshold <= 0 {
		opts.WordThreshold = 40
	}
	if opts.MinLength <= 0 {
		opts.MinLength = 25
	}
	return &Adapter{capability: c, opts: opts}
}

func (a *Adapter) Backend() string { return a.capability.Name() }

// Eligible reports whether there is any text to summarize. Only an absent
// description is skipped; "" and blank text fall under the word threshold
// and pass through unchanged.
func Eligible(text *string) bool {
	return text != nil
}

// Summarize returns the summary for text and how it was obtained.
// Absent text yields ModeSkipped and no error.
func (a *Adapter) Summarize(ctx context.Context, text *string) (string, Mode, error) {
	if !Eligible(text) {
		return "", ModeSkipped, nil
	}
	if textutil.CountWords(*text) < a.opts.WordThreshold {
		return *text, ModePassthrough, nil
	}

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	summary, err := a.capability.Summarize(ctx, Request{
		Text:          *text,
		MinLength:     a.opts.MinLength,
		Deterministic: true,
	})
	if err != nil {
		return "", ModeFailed, fmt.Errorf("%w: %s: %v", ErrCapability, a.capability.Name(), err)
	}
	return summary, ModeModel, nil
}
