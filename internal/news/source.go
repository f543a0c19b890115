package news

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/nikhilbhutani/voicenews/internal/models"
)

const (
	MinPageSize     = 1
	MaxPageSize     = 10
	DefaultPageSize = 5
)

var (
	ErrInvalidPageSize     = errors.New("page size out of range")
	ErrUpstreamUnavailable = errors.New("news source unavailable")
	ErrUpstreamMalformed   = errors.New("news source returned malformed data")
	ErrUpstreamTimeout     = errors.New("news source timed out")
)

// Query selects live headlines for one category.
type Query struct {
	Category models.Category
	PageSize int
	Country  string
}

func (q Query) Validate() error {
	if !q.Category.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidCategory, q.Category)
	}
	return ValidatePageSize(q.PageSize)
}

// ValidatePageSize enforces the inclusive [MinPageSize, MaxPageSize] range.
func ValidatePageSize(n int) error {
	if n < MinPageSize || n > MaxPageSize {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidPageSize, n, MinPageSize, MaxPageSize)
	}
	return nil
}

// Source fetches headlines from a remote provider. Each call re-queries the
// provider; results are in upstream order and never cached.
type Source interface {
	FetchHeadlines(ctx context.Context, q Query) ([]models.Article, error)
	Name() string
}

// classify maps transport failures onto the package's sentinel errors.
func classify(ctx context.Context, err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("%w: %v", ErrUpstreamTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
}
