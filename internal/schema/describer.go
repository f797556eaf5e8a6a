// Package schema renders a textual description of the database structure for
// use as generation context. The description is a pure read of
// information_schema; callers that want to avoid a round trip per request can
// wrap a describer with NewCached.
package schema

import "context"

type Describer interface {
	Describe(ctx context.Context) (string, error)
}

// DescriberFunc adapts a plain function to the Describer interface.
type DescriberFunc func(ctx context.Context) (string, error)

func (f DescriberFunc) Describe(ctx context.Context) (string, error) {
	return f(ctx)
}
