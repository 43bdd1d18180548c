// Package progress carries the optional free-text progress sink. It is
// purely observational; implementations must never influence control flow.
package progress

import (
	"context"
	"fmt"

	"github.com/chriserikbarnes/medrecpro/internal/observability"
)

// Reporter receives progress messages during ingestion.
type Reporter interface {
	Step(ctx context.Context, format string, args ...any)
}

// Noop discards all progress messages.
type Noop struct{}

func (Noop) Step(context.Context, string, ...any) {}

// Logged forwards progress messages to the structured log at debug level,
// keeping the correlation fields the context carries.
type Logged struct{}

func (Logged) Step(ctx context.Context, format string, args ...any) {
	observability.Debug(ctx, fmt.Sprintf(format, args...))
}

var (
	_ Reporter = Noop{}
	_ Reporter = Logged{}
)
