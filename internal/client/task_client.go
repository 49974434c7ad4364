package client

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/expiration"
)

// TaskClient provides the worker side of TaskService. Every call carries
// the API key and the worker identity it was created with.
type TaskClient struct {
	client *apiv1.TaskServiceClient
}

// NewTaskClient creates a task client on http.DefaultClient.
func NewTaskClient(baseURL, apiKey, workerID string) *TaskClient {
	return NewTaskClientWithHTTP(http.DefaultClient, baseURL, apiKey, workerID)
}

func NewTaskClientWithHTTP(httpClient connect.HTTPClient, baseURL, apiKey, workerID string) *TaskClient {
	return &TaskClient{
		client: apiv1.NewTaskServiceClient(
			httpClient,
			baseURL,
			connect.WithInterceptors(apiv1.NewCredentialsInterceptor(apiKey, workerID)),
		),
	}
}

// CreateTask seeds a pending task in a project.
func (c *TaskClient) CreateTask(ctx context.Context, projectID string, payload map[string]any) (*apiv1.Task, error) {
	resp, err := c.client.CreateTask(ctx, connect.NewRequest(&apiv1.CreateTaskRequest{
		ProjectID: projectID,
		Payload:   payload,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return resp.Msg.Task, nil
}

func (c *TaskClient) GetTask(ctx context.Context, taskID string) (*apiv1.Task, error) {
	resp, err := c.client.GetTask(ctx, connect.NewRequest(&apiv1.GetTaskRequest{ID: taskID}))
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return resp.Msg.Task, nil
}

func (c *TaskClient) ListTasks(ctx context.Context, req *apiv1.ListTasksRequest) (*apiv1.ListTasksResponse, error) {
	resp, err := c.client.ListTasks(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return resp.Msg, nil
}

func (c *TaskClient) Schema(ctx context.Context, taskID string) (*apiv1.GetTaskSchemaResponse, error) {
	resp, err := c.client.GetTaskSchema(ctx, connect.NewRequest(&apiv1.GetTaskSchemaRequest{TaskID: taskID}))
	if err != nil {
		return nil, fmt.Errorf("failed to get task schema: %w", err)
	}
	return resp.Msg, nil
}

// Claim reports a lost race as Claimed=false with a nil error.
func (c *TaskClient) Claim(ctx context.Context, taskID string) (*apiv1.ClaimTaskResponse, error) {
	resp, err := c.client.ClaimTask(ctx, connect.NewRequest(&apiv1.ClaimTaskRequest{TaskID: taskID}))
	if err != nil {
		return nil, fmt.Errorf("failed to claim task: %w", err)
	}
	return resp.Msg, nil
}

func (c *TaskClient) Skip(ctx context.Context, taskID string, seconds int64) (*apiv1.Task, error) {
	resp, err := c.client.SkipTask(ctx, connect.NewRequest(&apiv1.SkipTaskRequest{TaskID: taskID, Seconds: seconds}))
	if err != nil {
		return nil, fmt.Errorf("failed to skip task: %w", err)
	}
	return resp.Msg.Task, nil
}

func (c *TaskClient) UpdateTimer(ctx context.Context, taskID string, seconds int64) (*apiv1.UpdateTimerResponse, error) {
	resp, err := c.client.UpdateTimer(ctx, connect.NewRequest(&apiv1.UpdateTimerRequest{TaskID: taskID, Seconds: seconds}))
	if err != nil {
		return nil, fmt.Errorf("failed to update timer: %w", err)
	}
	return resp.Msg, nil
}

func (c *TaskClient) Expire(ctx context.Context, taskID string, reason expiration.Reason, seconds int64) (*apiv1.Task, error) {
	resp, err := c.client.ExpireTask(ctx, connect.NewRequest(&apiv1.ExpireTaskRequest{
		TaskID:  taskID,
		Reason:  string(reason),
		Seconds: seconds,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to report expiration: %w", err)
	}
	return resp.Msg.Task, nil
}

func (c *TaskClient) Submit(ctx context.Context, taskID string, values map[string]any, seconds int64) (*apiv1.SubmitTaskResponse, error) {
	resp, err := c.client.SubmitTask(ctx, connect.NewRequest(&apiv1.SubmitTaskRequest{
		TaskID:  taskID,
		Values:  values,
		Seconds: seconds,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to submit task: %w", err)
	}
	return resp.Msg, nil
}

func (c *TaskClient) ClaimReview(ctx context.Context, taskID string) (*apiv1.ClaimReviewResponse, error) {
	resp, err := c.client.ClaimReview(ctx, connect.NewRequest(&apiv1.ClaimReviewRequest{TaskID: taskID}))
	if err != nil {
		return nil, fmt.Errorf("failed to claim review: %w", err)
	}
	return resp.Msg, nil
}

func (c *TaskClient) SkipReview(ctx context.Context, taskID string, seconds int64) (*apiv1.Task, error) {
	resp, err := c.client.SkipReview(ctx, connect.NewRequest(&apiv1.SkipReviewRequest{TaskID: taskID, Seconds: seconds}))
	if err != nil {
		return nil, fmt.Errorf("failed to skip review: %w", err)
	}
	return resp.Msg.Task, nil
}

func (c *TaskClient) UpdateReviewTimer(ctx context.Context, taskID string, seconds int64) (*apiv1.UpdateReviewTimerResponse, error) {
	resp, err := c.client.UpdateReviewTimer(ctx, connect.NewRequest(&apiv1.UpdateReviewTimerRequest{TaskID: taskID, Seconds: seconds}))
	if err != nil {
		return nil, fmt.Errorf("failed to update review timer: %w", err)
	}
	return resp.Msg, nil
}

func (c *TaskClient) ExpireReview(ctx context.Context, taskID string, reason expiration.Reason, seconds int64) (*apiv1.Task, error) {
	resp, err := c.client.ExpireReview(ctx, connect.NewRequest(&apiv1.ExpireReviewRequest{
		TaskID:  taskID,
		Reason:  string(reason),
		Seconds: seconds,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to report review expiration: %w", err)
	}
	return resp.Msg.Task, nil
}

func (c *TaskClient) Approve(ctx context.Context, req *apiv1.ApproveTaskRequest) (*apiv1.ApproveTaskResponse, error) {
	resp, err := c.client.ApproveTask(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to approve task: %w", err)
	}
	return resp.Msg, nil
}

func (c *TaskClient) Reject(ctx context.Context, req *apiv1.RejectTaskRequest) (*apiv1.RejectTaskResponse, error) {
	resp, err := c.client.RejectTask(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to reject task: %w", err)
	}
	return resp.Msg, nil
}

// Requeue freezes a rejected task and returns its replacement.
func (c *TaskClient) Requeue(ctx context.Context, taskID string) (*apiv1.RequeueTaskResponse, error) {
	resp, err := c.client.RequeueTask(ctx, connect.NewRequest(&apiv1.RequeueTaskRequest{TaskID: taskID}))
	if err != nil {
		return nil, fmt.Errorf("failed to requeue task: %w", err)
	}
	return resp.Msg, nil
}

func (c *TaskClient) ReviewerFeedback(ctx context.Context, taskID string, rating int32, feedback string) (*apiv1.Task, error) {
	resp, err := c.client.SubmitReviewerFeedback(ctx, connect.NewRequest(&apiv1.SubmitReviewerFeedbackRequest{
		TaskID:   taskID,
		Rating:   rating,
		Feedback: feedback,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to submit reviewer feedback: %w", err)
	}
	return resp.Msg.Task, nil
}

// Logs returns the audit log of a task, optionally narrowed to one actor and
// a set of event types.
func (c *TaskClient) Logs(ctx context.Context, taskID, actor string, events ...string) ([]*apiv1.TaskLog, error) {
	resp, err := c.client.ListTaskLogs(ctx, connect.NewRequest(&apiv1.ListTaskLogsRequest{
		TaskID: taskID,
		Actor:  actor,
		Events: events,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to list task logs: %w", err)
	}
	return resp.Msg.Logs, nil
}
