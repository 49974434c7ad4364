package tasklog

import (
	"context"

	"connectrpc.com/connect"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/pkg/cerr"
)

type Server struct {
	repo Repository
}

func NewServer(repo Repository) *Server {
	return &Server{repo: repo}
}

func (s *Server) ListTaskLogs(ctx context.Context, req *connect.Request[apiv1.ListTaskLogsRequest]) (*connect.Response[apiv1.ListTaskLogsResponse], error) {
	if req.Msg.TaskID == "" {
		return nil, cerr.NewError(cerr.InvalidArgument, "task_id is required", nil).
			AddFieldViolation("task_id", "required", "task_id is required")
	}
	limit, offset := int32(50), int32(0)
	if req.Msg.Pagination != nil {
		if req.Msg.Pagination.Limit > 0 {
			limit = req.Msg.Pagination.Limit
		}
		offset = req.Msg.Pagination.Offset
	}

	page, err := s.repo.List(ctx, Query{
		TaskID: req.Msg.TaskID,
		Actor:  req.Msg.Actor,
		Events: req.Msg.Events,
		Limit:  int(limit),
		Offset: int(offset),
	})
	if err != nil {
		return nil, err
	}

	msgs := make([]*apiv1.TaskLog, len(page.Logs))
	for i, l := range page.Logs {
		msgs[i] = toAPI(l)
	}

	return connect.NewResponse(&apiv1.ListTaskLogsResponse{
		Logs: msgs,
		Pagination: &apiv1.PaginationResponse{
			Total:  int32(page.Total),
			Limit:  limit,
			Offset: offset,
		},
	}), nil
}

func toAPI(l *TaskLog) *apiv1.TaskLog {
	return &apiv1.TaskLog{
		ID:        l.ID,
		TaskID:    l.TaskID,
		Event:     l.Event,
		Actor:     l.Actor,
		Message:   l.Message,
		Metadata:  l.Metadata,
		CreatedAt: l.CreatedAt,
	}
}
