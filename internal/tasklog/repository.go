package tasklog

import (
	"context"
	"slices"
)

// Query selects the log entries of one task. Empty filters match every
// entry; Limit 0 means no limit.
type Query struct {
	TaskID string
	Actor  string
	Events []string
	Limit  int
	Offset int
}

func (q Query) matches(l *TaskLog) bool {
	if q.Actor != "" && l.Actor != q.Actor {
		return false
	}
	return len(q.Events) == 0 || slices.Contains(q.Events, l.Event)
}

// Page is one window of a query's results. Total counts every match.
type Page struct {
	Logs  []*TaskLog
	Total int
}

// Paginate filters logs, kept in time order, and cuts the requested window.
func (q Query) Paginate(logs []*TaskLog) *Page {
	matched := make([]*TaskLog, 0, len(logs))
	for _, l := range logs {
		if q.matches(l) {
			matched = append(matched, l)
		}
	}
	page := &Page{Total: len(matched)}
	if q.Offset >= len(matched) {
		return page
	}
	matched = matched[q.Offset:]
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	page.Logs = matched
	return page
}

type Repository interface {
	// Append stores a new entry. Entries are immutable, so appending an id
	// twice fails with AlreadyExists.
	Append(ctx context.Context, log *TaskLog) error
	List(ctx context.Context, q Query) (*Page, error)
}
