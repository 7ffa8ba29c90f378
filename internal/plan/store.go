package plan

import "context"

// Store abstracts plan persistence.
type Store interface {
	Get(ctx context.Context, id string) (*Plan, error)
	ListActive(ctx context.Context) ([]*Plan, error)
}
