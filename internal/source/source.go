package source

import (
	"context"

	"normas/internal/record"
)

// Source produces the raw records for one pipeline run. The pipeline only
// depends on this interface, the portal client below is one implementation.
type Source interface {
	Fetch(ctx context.Context) ([]record.Document, error)
}
