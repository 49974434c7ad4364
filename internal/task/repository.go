package task

import (
	"context"
	"time"
)

type ListFilter struct {
	ProjectID    string
	Status       Status
	AssignedTo   string
	ReviewedBy   string
	ParentTaskID string
}

func (f ListFilter) Match(t *Task) bool {
	if f.ProjectID != "" && t.ProjectID != f.ProjectID {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.AssignedTo != "" && t.AssignedTo != f.AssignedTo {
		return false
	}
	if f.ReviewedBy != "" && t.ReviewedBy != f.ReviewedBy {
		return false
	}
	if f.ParentTaskID != "" && t.ParentTaskID != f.ParentTaskID {
		return false
	}
	return true
}

// Repository is the task store. Every write is atomic: a failed call leaves
// the stored record untouched.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Task, int, error)

	// Claim assigns a pending, unassigned task to workerID. It is a single
	// compare-and-set; losing the race yields cerr.Aborted.
	Claim(ctx context.Context, id, workerID string, now time.Time) (*Task, error)
	// ClaimReview assigns a reviewable task without a reviewer to reviewerID,
	// with the same conflict semantics as Claim.
	ClaimReview(ctx context.Context, id, reviewerID string, now time.Time) (*Task, error)

	// Update applies fn to the current record and stores the result. When fn
	// returns an error nothing is written.
	Update(ctx context.Context, id string, fn func(t *Task) error) (*Task, error)

	// Requeue applies fn to the current record, which must freeze it and
	// return the sibling to create. Both writes land together or not at all.
	Requeue(ctx context.Context, id string, fn func(t *Task) (*Task, error)) (frozen, spawned *Task, err error)
}
