package repositoryimpl

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/labelguild/internal/project"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/storage"
)

const prefix = "projects"

// YAMLRepository stores each project definition as projects/<id>.yaml.
type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

func key(id string) string {
	return fmt.Sprintf("%s/%s.yaml", prefix, id)
}

func (r *YAMLRepository) Save(ctx context.Context, p *project.Project) error {
	if err := p.Validate(); err != nil {
		return cerr.NewError(cerr.InvalidArgument, err.Error(), err)
	}
	prev, err := r.Get(ctx, p.ID)
	switch {
	case err == nil:
		p.CreatedAt = prev.CreatedAt
	case cerr.IsCode(err, cerr.NotFound):
		if p.CreatedAt.IsZero() {
			p.CreatedAt = p.UpdatedAt
		}
	default:
		return err
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal project: %w", err))
	}
	if err := r.storage.Write(ctx, key(p.ID), data); err != nil {
		return cerr.WrapStorageWriteError("project", err)
	}
	return nil
}

func (r *YAMLRepository) Get(ctx context.Context, id string) (*project.Project, error) {
	data, err := r.storage.Read(ctx, key(id))
	if err != nil {
		return nil, cerr.WrapStorageReadError("project", err)
	}
	return decode(data)
}

func (r *YAMLRepository) List(ctx context.Context) ([]*project.Project, error) {
	var projects []*project.Project
	err := storage.Walk(ctx, r.storage, prefix, func(path string, data []byte) error {
		p, err := decode(data)
		if err != nil {
			slog.WarnContext(ctx, "skipping corrupt project", "path", path, "error", err)
			return nil
		}
		projects = append(projects, p)
		return nil
	})
	if err != nil {
		return nil, cerr.WrapStorageReadError("projects", err)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func decode(data []byte) (*project.Project, error) {
	var p project.Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal project: %w", err))
	}
	return &p, nil
}
