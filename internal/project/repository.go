package project

import "context"

type Repository interface {
	Get(ctx context.Context, id string) (*Project, error)
	// List returns every project ordered by id.
	List(ctx context.Context) ([]*Project, error)
	// Save validates and stores p, replacing an earlier definition with the
	// same id. The first save of an id fixes its creation time.
	Save(ctx context.Context, p *Project) error
}
