package repositoryimpl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kazz187/labelguild/internal/earnings"
	"github.com/kazz187/labelguild/internal/expiration"
	"github.com/kazz187/labelguild/internal/task"
	"github.com/kazz187/labelguild/pkg/cerr"
)

const createTasksTable = `
CREATE TABLE IF NOT EXISTS labelguild_tasks (
  id TEXT PRIMARY KEY,
  project_id TEXT NOT NULL,
  status TEXT NOT NULL,
  assigned_to TEXT,
  annotator_id TEXT,
  reviewed_by TEXT,
  annotator_time_spent BIGINT NOT NULL DEFAULT 0,
  reviewer_time_spent BIGINT NOT NULL DEFAULT 0,
  annotator_earnings BIGINT,
  reviewer_earnings BIGINT,
  annotator_started_at TIMESTAMPTZ,
  reviewer_started_at TIMESTAMPTZ,
  submitted_at TIMESTAMPTZ,
  reviewed_at TIMESTAMPTZ,
  review_rating INT NOT NULL DEFAULT 0,
  review_feedback TEXT NOT NULL DEFAULT '',
  reviewer_rating INT NOT NULL DEFAULT 0,
  reviewer_feedback TEXT NOT NULL DEFAULT '',
  feedback_by TEXT NOT NULL DEFAULT '',
  expired_count INT NOT NULL DEFAULT 0,
  review_expired_count INT NOT NULL DEFAULT 0,
  last_expired_at TIMESTAMPTZ,
  last_expire_reason TEXT NOT NULL DEFAULT '',
  parent_task_id TEXT,
  payload JSONB,
  answer_values JSONB,
  metadata JSONB,
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS labelguild_tasks_project_status ON labelguild_tasks (project_id, status);
CREATE INDEX IF NOT EXISTS labelguild_tasks_parent ON labelguild_tasks (parent_task_id);
`

const taskColumns = `id, project_id, status, assigned_to, annotator_id, reviewed_by,
annotator_time_spent, reviewer_time_spent, annotator_earnings, reviewer_earnings,
annotator_started_at, reviewer_started_at, submitted_at, reviewed_at,
review_rating, review_feedback, reviewer_rating, reviewer_feedback, feedback_by,
expired_count, review_expired_count, last_expired_at, last_expire_reason,
parent_task_id, payload, answer_values, metadata, created_at, updated_at`

// PostgresRepository keeps tasks in one table. Claims are single conditional
// UPDATE statements; other writes lock the row for the read-modify-write.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects and creates the table when missing.
func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createTasksTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init task schema: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) Create(ctx context.Context, t *task.Task) error {
	args, err := taskArgs(t)
	if err != nil {
		return err
	}
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`INSERT INTO labelguild_tasks (%s) VALUES (%s)`, taskColumns, strings.Join(placeholders, ","))
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return cerr.NewError(cerr.AlreadyExists, "task already exists", err)
		}
		return wrapPostgresError("insert task", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM labelguild_tasks WHERE id=$1`, id)
	return scanTask(row)
}

func (r *PostgresRepository) List(ctx context.Context, filter task.ListFilter, limit, offset int) ([]*task.Task, int, error) {
	var (
		conds []string
		args  []any
	)
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s=$%d", column, len(args)))
	}
	add("project_id", filter.ProjectID)
	add("status", string(filter.Status))
	add("assigned_to", filter.AssignedTo)
	add("reviewed_by", filter.ReviewedBy)
	add("parent_task_id", filter.ParentTaskID)

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM labelguild_tasks`+where, args...).Scan(&total); err != nil {
		return nil, 0, wrapPostgresError("count tasks", err)
	}

	query := `SELECT ` + taskColumns + ` FROM labelguild_tasks` + where + ` ORDER BY id`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, wrapPostgresError("list tasks", err)
	}
	defer rows.Close()

	var out []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapPostgresError("list tasks", err)
	}
	return out, total, nil
}

func (r *PostgresRepository) Claim(ctx context.Context, id, workerID string, now time.Time) (*task.Task, error) {
	if workerID == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "worker id is required", nil)
	}
	row := r.pool.QueryRow(ctx, `
UPDATE labelguild_tasks
SET status='in_progress', assigned_to=$2, annotator_started_at=$3, updated_at=$3
WHERE id=$1 AND assigned_to IS NULL AND status='pending'
RETURNING `+taskColumns, id, workerID, now)
	t, err := scanTask(row)
	if err == nil {
		return t, nil
	}
	if !cerr.IsCode(err, cerr.NotFound) {
		return nil, err
	}
	return nil, r.explainConflict(ctx, id, func(t *task.Task) error { return t.Claim(workerID, now) })
}

func (r *PostgresRepository) ClaimReview(ctx context.Context, id, reviewerID string, now time.Time) (*task.Task, error) {
	if reviewerID == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "reviewer id is required", nil)
	}
	row := r.pool.QueryRow(ctx, `
UPDATE labelguild_tasks
SET reviewed_by=$2, reviewer_started_at=$3, updated_at=$3
WHERE id=$1 AND reviewed_by IS NULL AND status IN ('submitted','completed')
  AND annotator_id IS DISTINCT FROM $2
RETURNING `+taskColumns, id, reviewerID, now)
	t, err := scanTask(row)
	if err == nil {
		return t, nil
	}
	if !cerr.IsCode(err, cerr.NotFound) {
		return nil, err
	}
	return nil, r.explainConflict(ctx, id, func(t *task.Task) error { return t.ClaimReview(reviewerID, now) })
}

// explainConflict classifies a conditional update that matched no row by
// replaying the guard on the current record.
func (r *PostgresRepository) explainConflict(ctx context.Context, id string, guard func(t *task.Task) error) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := guard(current); err != nil {
		return err
	}
	return cerr.NewError(cerr.Aborted, "task is no longer available", nil)
}

func (r *PostgresRepository) Update(ctx context.Context, id string, fn func(t *task.Task) error) (*task.Task, error) {
	var updated *task.Task
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		t, err := lockTask(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		if err := updateTask(ctx, tx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *PostgresRepository) Requeue(ctx context.Context, id string, fn func(t *task.Task) (*task.Task, error)) (*task.Task, *task.Task, error) {
	var frozen, spawned *task.Task
	err := r.inTx(ctx, func(tx pgx.Tx) error {
		t, err := lockTask(ctx, tx, id)
		if err != nil {
			return err
		}
		sibling, err := fn(t)
		if err != nil {
			return err
		}
		if err := updateTask(ctx, tx, t); err != nil {
			return err
		}
		args, err := taskArgs(sibling)
		if err != nil {
			return err
		}
		placeholders := make([]string, len(args))
		for i := range args {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		}
		if _, err := tx.Exec(ctx, fmt.Sprintf(`INSERT INTO labelguild_tasks (%s) VALUES (%s)`, taskColumns, strings.Join(placeholders, ",")), args...); err != nil {
			return wrapPostgresError("insert requeued task", err)
		}
		frozen, spawned = t, sibling
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return frozen, spawned, nil
}

func (r *PostgresRepository) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return wrapPostgresError("begin", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapPostgresError("commit", err)
	}
	return nil
}

func lockTask(ctx context.Context, tx pgx.Tx, id string) (*task.Task, error) {
	row := tx.QueryRow(ctx, `SELECT `+taskColumns+` FROM labelguild_tasks WHERE id=$1 FOR UPDATE`, id)
	return scanTask(row)
}

func updateTask(ctx context.Context, tx pgx.Tx, t *task.Task) error {
	args, err := taskArgs(t)
	if err != nil {
		return err
	}
	columns := strings.Split(taskColumns, ",")
	sets := make([]string, 0, len(columns)-1)
	for i, c := range columns {
		c = strings.TrimSpace(c)
		if c == "id" {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s=$%d", c, i+1))
	}
	if _, err := tx.Exec(ctx, `UPDATE labelguild_tasks SET `+strings.Join(sets, ", ")+` WHERE id=$1`, args...); err != nil {
		return wrapPostgresError("update task", err)
	}
	return nil
}

// taskArgs returns the column values in taskColumns order.
func taskArgs(t *task.Task) ([]any, error) {
	payload, err := jsonColumn(t.Payload)
	if err != nil {
		return nil, err
	}
	values, err := jsonColumn(t.Values)
	if err != nil {
		return nil, err
	}
	metadata, err := jsonColumn(t.Metadata)
	if err != nil {
		return nil, err
	}
	return []any{
		t.ID, t.ProjectID, string(t.Status), nullString(t.AssignedTo), nullString(t.AnnotatorID), nullString(t.ReviewedBy),
		t.AnnotatorTimeSpent, t.ReviewerTimeSpent, nullCents(t.AnnotatorEarnings), nullCents(t.ReviewerEarnings),
		nullTime(t.AnnotatorStartedAt), nullTime(t.ReviewerStartedAt), nullTime(t.SubmittedAt), nullTime(t.ReviewedAt),
		t.ReviewRating, t.ReviewFeedback, t.ReviewerRating, t.ReviewerFeedback, t.FeedbackBy,
		t.ExpiredCount, t.ReviewExpiredCount, nullTime(t.LastExpiredAt), string(t.LastExpireReason),
		nullString(t.ParentTaskID), payload, values, metadata, t.CreatedAt, t.UpdatedAt,
	}, nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	var (
		t                task.Task
		status           string
		lastReason       string
		assignedTo       *string
		annotatorID      *string
		reviewedBy       *string
		parentID         *string
		annotatorEarning *int64
		reviewerEarning  *int64
		annotatorStarted *time.Time
		reviewerStarted  *time.Time
		submitted        *time.Time
		reviewed         *time.Time
		lastExpired      *time.Time
		payload          []byte
		values           []byte
		metadata         []byte
	)
	err := row.Scan(
		&t.ID, &t.ProjectID, &status, &assignedTo, &annotatorID, &reviewedBy,
		&t.AnnotatorTimeSpent, &t.ReviewerTimeSpent, &annotatorEarning, &reviewerEarning,
		&annotatorStarted, &reviewerStarted, &submitted, &reviewed,
		&t.ReviewRating, &t.ReviewFeedback, &t.ReviewerRating, &t.ReviewerFeedback, &t.FeedbackBy,
		&t.ExpiredCount, &t.ReviewExpiredCount, &lastExpired, &lastReason,
		&parentID, &payload, &values, &metadata, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cerr.NewError(cerr.NotFound, "task not found", err)
		}
		return nil, wrapPostgresError("scan task", err)
	}
	t.Status = task.Status(status)
	t.LastExpireReason = expiration.Reason(lastReason)
	t.AssignedTo = deref(assignedTo)
	t.AnnotatorID = deref(annotatorID)
	t.ReviewedBy = deref(reviewedBy)
	t.ParentTaskID = deref(parentID)
	t.AnnotatorEarnings = centsPtr(annotatorEarning)
	t.ReviewerEarnings = centsPtr(reviewerEarning)
	t.AnnotatorStartedAt = derefTime(annotatorStarted)
	t.ReviewerStartedAt = derefTime(reviewerStarted)
	t.SubmittedAt = derefTime(submitted)
	t.ReviewedAt = derefTime(reviewed)
	t.LastExpiredAt = derefTime(lastExpired)
	if err := unmarshalColumn(payload, &t.Payload); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(values, &t.Values); err != nil {
		return nil, err
	}
	if err := unmarshalColumn(metadata, &t.Metadata); err != nil {
		return nil, err
	}
	return &t, nil
}

func jsonColumn[T any](v T) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal column: %w", err))
	}
	if string(data) == "null" {
		return nil, nil
	}
	return string(data), nil
}

func unmarshalColumn(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal column: %w", err))
	}
	return nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func derefTime(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func nullCents(c *earnings.Cents) *int64 {
	if c == nil {
		return nil
	}
	v := int64(*c)
	return &v
}

func centsPtr(v *int64) *earnings.Cents {
	if v == nil {
		return nil
	}
	c := earnings.Cents(*v)
	return &c
}

func wrapPostgresError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("%s: %w", op, err))
	}
	return cerr.NewError(cerr.Unavailable, "task store unavailable", fmt.Errorf("%s: %w", op, err))
}
