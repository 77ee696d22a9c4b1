package domain

import "context"

// Polisher is the optional language-generation collaborator that rephrases a
// deterministic explanation. It is additive only: its output is never the
// sole source of a number, and a failure never fails the request. The
// composer verifies the polished text still traces back to the forecast
// before accepting it.
type Polisher interface {
	Polish(ctx context.Context, forecast Forecast, role Role, draft string) (string, error)
}
