package lifecycle

import (
	"context"

	"connectrpc.com/connect"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/expiration"
	"github.com/kazz187/labelguild/internal/task"
	"github.com/kazz187/labelguild/internal/tasklog"
	"github.com/kazz187/labelguild/pkg/cerr"
)

var _ apiv1.TaskServiceHandler = (*Server)(nil)

type Server struct {
	service   *Service
	tasks     task.Repository
	logServer *tasklog.Server
}

func NewServer(service *Service, tasks task.Repository, logServer *tasklog.Server) *Server {
	return &Server{
		service:   service,
		tasks:     tasks,
		logServer: logServer,
	}
}

func (s *Server) CreateTask(ctx context.Context, req *connect.Request[apiv1.CreateTaskRequest]) (*connect.Response[apiv1.CreateTaskResponse], error) {
	t, err := s.service.CreateTask(ctx, req.Msg.ProjectID, req.Msg.Payload, req.Msg.Metadata)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.CreateTaskResponse{Task: toAPI(t)}), nil
}

func (s *Server) GetTask(ctx context.Context, req *connect.Request[apiv1.GetTaskRequest]) (*connect.Response[apiv1.GetTaskResponse], error) {
	if err := requireTaskID(req.Msg.ID); err != nil {
		return nil, err
	}
	t, err := s.tasks.Get(ctx, req.Msg.ID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.GetTaskResponse{Task: toAPI(t)}), nil
}

func (s *Server) ListTasks(ctx context.Context, req *connect.Request[apiv1.ListTasksRequest]) (*connect.Response[apiv1.ListTasksResponse], error) {
	limit, offset := int32(50), int32(0)
	if req.Msg.Pagination != nil {
		if req.Msg.Pagination.Limit > 0 {
			limit = req.Msg.Pagination.Limit
		}
		offset = req.Msg.Pagination.Offset
	}
	filter := task.ListFilter{
		ProjectID:    req.Msg.ProjectID,
		AssignedTo:   req.Msg.AssignedTo,
		ReviewedBy:   req.Msg.ReviewedBy,
		ParentTaskID: req.Msg.ParentTaskID,
	}
	if req.Msg.Status != "" {
		st, err := task.ParseStatus(req.Msg.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}

	tasks, total, err := s.tasks.List(ctx, filter, int(limit), int(offset))
	if err != nil {
		return nil, err
	}
	msgs := make([]*apiv1.Task, len(tasks))
	for i, t := range tasks {
		msgs[i] = toAPI(t)
	}
	return connect.NewResponse(&apiv1.ListTasksResponse{
		Tasks: msgs,
		Pagination: &apiv1.PaginationResponse{
			Total:  int32(total),
			Limit:  limit,
			Offset: offset,
		},
	}), nil
}

func (s *Server) GetTaskSchema(ctx context.Context, req *connect.Request[apiv1.GetTaskSchemaRequest]) (*connect.Response[apiv1.GetTaskSchemaResponse], error) {
	t, p, err := s.service.Schema(ctx, req.Msg.TaskID)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.GetTaskSchemaResponse{
		TaskID:        t.ID,
		ProjectID:     p.ID,
		Schema:        p.Schema,
		Payload:       t.Payload,
		Limits:        p.AnnotatorLimits(),
		ReviewLimits:  p.ReviewerLimits(),
		ReviewEnabled: p.ReviewEnabled,
	}), nil
}

func (s *Server) ClaimTask(ctx context.Context, req *connect.Request[apiv1.ClaimTaskRequest]) (*connect.Response[apiv1.ClaimTaskResponse], error) {
	t, p, err := s.service.Claim(ctx, req.Msg.TaskID, apiv1.WorkerID(req.Header()))
	if cerr.IsCode(err, cerr.Aborted) {
		return connect.NewResponse(&apiv1.ClaimTaskResponse{
			Claimed: false,
			Message: "task is no longer available",
		}), nil
	}
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.ClaimTaskResponse{
		Claimed: true,
		Task:    toAPI(t),
		Limits:  p.AnnotatorLimits(),
	}), nil
}

func (s *Server) SkipTask(ctx context.Context, req *connect.Request[apiv1.SkipTaskRequest]) (*connect.Response[apiv1.SkipTaskResponse], error) {
	t, err := s.service.Skip(ctx, req.Msg.TaskID, apiv1.WorkerID(req.Header()), req.Msg.Seconds)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.SkipTaskResponse{Task: toAPI(t)}), nil
}

func (s *Server) UpdateTimer(ctx context.Context, req *connect.Request[apiv1.UpdateTimerRequest]) (*connect.Response[apiv1.UpdateTimerResponse], error) {
	persisted, seconds, err := s.service.UpdateTimer(ctx, req.Msg.TaskID, apiv1.WorkerID(req.Header()), req.Msg.Seconds)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.UpdateTimerResponse{Persisted: persisted, Seconds: seconds}), nil
}

func (s *Server) ExpireTask(ctx context.Context, req *connect.Request[apiv1.ExpireTaskRequest]) (*connect.Response[apiv1.ExpireTaskResponse], error) {
	t, err := s.service.Expire(ctx, req.Msg.TaskID, apiv1.WorkerID(req.Header()), expiration.Reason(req.Msg.Reason), req.Msg.Seconds)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.ExpireTaskResponse{Task: toAPI(t)}), nil
}

func (s *Server) SubmitTask(ctx context.Context, req *connect.Request[apiv1.SubmitTaskRequest]) (*connect.Response[apiv1.SubmitTaskResponse], error) {
	t, err := s.service.Submit(ctx, SubmitInput{
		TaskID:   req.Msg.TaskID,
		WorkerID: apiv1.WorkerID(req.Header()),
		Values:   req.Msg.Values,
		Seconds:  req.Msg.Seconds,
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.SubmitTaskResponse{
		EarningsCents: centsOf(t.AnnotatorEarnings),
		TimeSpent:     t.AnnotatorTimeSpent,
		Task:          toAPI(t),
	}), nil
}

func (s *Server) ClaimReview(ctx context.Context, req *connect.Request[apiv1.ClaimReviewRequest]) (*connect.Response[apiv1.ClaimReviewResponse], error) {
	t, p, err := s.service.ClaimReview(ctx, req.Msg.TaskID, apiv1.WorkerID(req.Header()))
	if cerr.IsCode(err, cerr.Aborted) {
		return connect.NewResponse(&apiv1.ClaimReviewResponse{
			Claimed: false,
			Message: "task is already under review",
		}), nil
	}
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.ClaimReviewResponse{
		Claimed: true,
		Task:    toAPI(t),
		Limits:  p.ReviewerLimits(),
	}), nil
}

func (s *Server) SkipReview(ctx context.Context, req *connect.Request[apiv1.SkipReviewRequest]) (*connect.Response[apiv1.SkipReviewResponse], error) {
	t, err := s.service.SkipReview(ctx, req.Msg.TaskID, apiv1.WorkerID(req.Header()), req.Msg.Seconds)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.SkipReviewResponse{Task: toAPI(t)}), nil
}

func (s *Server) UpdateReviewTimer(ctx context.Context, req *connect.Request[apiv1.UpdateReviewTimerRequest]) (*connect.Response[apiv1.UpdateReviewTimerResponse], error) {
	persisted, seconds, err := s.service.UpdateReviewTimer(ctx, req.Msg.TaskID, apiv1.WorkerID(req.Header()), req.Msg.Seconds)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.UpdateReviewTimerResponse{Persisted: persisted, Seconds: seconds}), nil
}

func (s *Server) ExpireReview(ctx context.Context, req *connect.Request[apiv1.ExpireReviewRequest]) (*connect.Response[apiv1.ExpireReviewResponse], error) {
	t, err := s.service.ExpireReview(ctx, req.Msg.TaskID, apiv1.WorkerID(req.Header()), expiration.Reason(req.Msg.Reason), req.Msg.Seconds)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.ExpireReviewResponse{Task: toAPI(t)}), nil
}

func (s *Server) ApproveTask(ctx context.Context, req *connect.Request[apiv1.ApproveTaskRequest]) (*connect.Response[apiv1.ApproveTaskResponse], error) {
	t, err := s.service.Resolve(ctx, ResolveInput{
		TaskID:     req.Msg.TaskID,
		ReviewerID: apiv1.WorkerID(req.Header()),
		Approve:    true,
		Values:     req.Msg.Values,
		Rating:     req.Msg.Rating,
		Feedback:   req.Msg.Feedback,
		Seconds:    req.Msg.Seconds,
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.ApproveTaskResponse{
		EarningsCents: centsOf(t.ReviewerEarnings),
		TimeSpent:     t.ReviewerTimeSpent,
		Task:          toAPI(t),
	}), nil
}

func (s *Server) RejectTask(ctx context.Context, req *connect.Request[apiv1.RejectTaskRequest]) (*connect.Response[apiv1.RejectTaskResponse], error) {
	t, err := s.service.Resolve(ctx, ResolveInput{
		TaskID:     req.Msg.TaskID,
		ReviewerID: apiv1.WorkerID(req.Header()),
		Rating:     req.Msg.Rating,
		Feedback:   req.Msg.Feedback,
		Seconds:    req.Msg.Seconds,
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.RejectTaskResponse{
		EarningsCents: centsOf(t.ReviewerEarnings),
		Task:          toAPI(t),
	}), nil
}

func (s *Server) RequeueTask(ctx context.Context, req *connect.Request[apiv1.RequeueTaskRequest]) (*connect.Response[apiv1.RequeueTaskResponse], error) {
	frozen, spawned, err := s.service.Requeue(ctx, req.Msg.TaskID, apiv1.WorkerID(req.Header()))
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.RequeueTaskResponse{
		NewTaskID: spawned.ID,
		Frozen:    toAPI(frozen),
		Task:      toAPI(spawned),
	}), nil
}

func (s *Server) SubmitReviewerFeedback(ctx context.Context, req *connect.Request[apiv1.SubmitReviewerFeedbackRequest]) (*connect.Response[apiv1.SubmitReviewerFeedbackResponse], error) {
	t, err := s.service.SubmitReviewerFeedback(ctx, req.Msg.TaskID, apiv1.WorkerID(req.Header()), req.Msg.Rating, req.Msg.Feedback)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&apiv1.SubmitReviewerFeedbackResponse{Task: toAPI(t)}), nil
}

func (s *Server) ListTaskLogs(ctx context.Context, req *connect.Request[apiv1.ListTaskLogsRequest]) (*connect.Response[apiv1.ListTaskLogsResponse], error) {
	return s.logServer.ListTaskLogs(ctx, req)
}
