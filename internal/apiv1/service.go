package apiv1

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	TaskServiceName             = "labelguild.v1.TaskService"
	EventServiceName            = "labelguild.v1.EventService"
	PushNotificationServiceName = "labelguild.v1.PushNotificationService"
)

// Procedure paths, as routed by the handlers and called by the clients.
const (
	TaskServiceCreateTaskProcedure                             = "/labelguild.v1.TaskService/CreateTask"
	TaskServiceGetTaskProcedure                                = "/labelguild.v1.TaskService/GetTask"
	TaskServiceListTasksProcedure                              = "/labelguild.v1.TaskService/ListTasks"
	TaskServiceGetTaskSchemaProcedure                          = "/labelguild.v1.TaskService/GetTaskSchema"
	TaskServiceClaimTaskProcedure                              = "/labelguild.v1.TaskService/ClaimTask"
	TaskServiceSkipTaskProcedure                               = "/labelguild.v1.TaskService/SkipTask"
	TaskServiceUpdateTimerProcedure                            = "/labelguild.v1.TaskService/UpdateTimer"
	TaskServiceExpireTaskProcedure                             = "/labelguild.v1.TaskService/ExpireTask"
	TaskServiceSubmitTaskProcedure                             = "/labelguild.v1.TaskService/SubmitTask"
	TaskServiceClaimReviewProcedure                            = "/labelguild.v1.TaskService/ClaimReview"
	TaskServiceSkipReviewProcedure                             = "/labelguild.v1.TaskService/SkipReview"
	TaskServiceUpdateReviewTimerProcedure                      = "/labelguild.v1.TaskService/UpdateReviewTimer"
	TaskServiceExpireReviewProcedure                           = "/labelguild.v1.TaskService/ExpireReview"
	TaskServiceApproveTaskProcedure                            = "/labelguild.v1.TaskService/ApproveTask"
	TaskServiceRejectTaskProcedure                             = "/labelguild.v1.TaskService/RejectTask"
	TaskServiceRequeueTaskProcedure                            = "/labelguild.v1.TaskService/RequeueTask"
	TaskServiceSubmitReviewerFeedbackProcedure                 = "/labelguild.v1.TaskService/SubmitReviewerFeedback"
	TaskServiceListTaskLogsProcedure                           = "/labelguild.v1.TaskService/ListTaskLogs"
	EventServiceSubscribeEventsProcedure                       = "/labelguild.v1.EventService/SubscribeEvents"
	PushNotificationServiceGetVapidPublicKeyProcedure          = "/labelguild.v1.PushNotificationService/GetVapidPublicKey"
	PushNotificationServiceRegisterPushSubscriptionProcedure   = "/labelguild.v1.PushNotificationService/RegisterPushSubscription"
	PushNotificationServiceUnregisterPushSubscriptionProcedure = "/labelguild.v1.PushNotificationService/UnregisterPushSubscription"
)

type TaskServiceHandler interface {
	CreateTask(context.Context, *connect.Request[CreateTaskRequest]) (*connect.Response[CreateTaskResponse], error)
	GetTask(context.Context, *connect.Request[GetTaskRequest]) (*connect.Response[GetTaskResponse], error)
	ListTasks(context.Context, *connect.Request[ListTasksRequest]) (*connect.Response[ListTasksResponse], error)
	GetTaskSchema(context.Context, *connect.Request[GetTaskSchemaRequest]) (*connect.Response[GetTaskSchemaResponse], error)
	ClaimTask(context.Context, *connect.Request[ClaimTaskRequest]) (*connect.Response[ClaimTaskResponse], error)
	SkipTask(context.Context, *connect.Request[SkipTaskRequest]) (*connect.Response[SkipTaskResponse], error)
	UpdateTimer(context.Context, *connect.Request[UpdateTimerRequest]) (*connect.Response[UpdateTimerResponse], error)
	ExpireTask(context.Context, *connect.Request[ExpireTaskRequest]) (*connect.Response[ExpireTaskResponse], error)
	SubmitTask(context.Context, *connect.Request[SubmitTaskRequest]) (*connect.Response[SubmitTaskResponse], error)
	ClaimReview(context.Context, *connect.Request[ClaimReviewRequest]) (*connect.Response[ClaimReviewResponse], error)
	SkipReview(context.Context, *connect.Request[SkipReviewRequest]) (*connect.Response[SkipReviewResponse], error)
	UpdateReviewTimer(context.Context, *connect.Request[UpdateReviewTimerRequest]) (*connect.Response[UpdateReviewTimerResponse], error)
	ExpireReview(context.Context, *connect.Request[ExpireReviewRequest]) (*connect.Response[ExpireReviewResponse], error)
	ApproveTask(context.Context, *connect.Request[ApproveTaskRequest]) (*connect.Response[ApproveTaskResponse], error)
	RejectTask(context.Context, *connect.Request[RejectTaskRequest]) (*connect.Response[RejectTaskResponse], error)
	RequeueTask(context.Context, *connect.Request[RequeueTaskRequest]) (*connect.Response[RequeueTaskResponse], error)
	SubmitReviewerFeedback(context.Context, *connect.Request[SubmitReviewerFeedbackRequest]) (*connect.Response[SubmitReviewerFeedbackResponse], error)
	ListTaskLogs(context.Context, *connect.Request[ListTaskLogsRequest]) (*connect.Response[ListTaskLogsResponse], error)
}

// NewTaskServiceHandler routes every TaskService procedure to svc.
func NewTaskServiceHandler(svc TaskServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	createTaskHandler := connect.NewUnaryHandler(TaskServiceCreateTaskProcedure, svc.CreateTask, opts...)
	getTaskHandler := connect.NewUnaryHandler(TaskServiceGetTaskProcedure, svc.GetTask, opts...)
	listTasksHandler := connect.NewUnaryHandler(TaskServiceListTasksProcedure, svc.ListTasks, opts...)
	getTaskSchemaHandler := connect.NewUnaryHandler(TaskServiceGetTaskSchemaProcedure, svc.GetTaskSchema, opts...)
	claimTaskHandler := connect.NewUnaryHandler(TaskServiceClaimTaskProcedure, svc.ClaimTask, opts...)
	skipTaskHandler := connect.NewUnaryHandler(TaskServiceSkipTaskProcedure, svc.SkipTask, opts...)
	updateTimerHandler := connect.NewUnaryHandler(TaskServiceUpdateTimerProcedure, svc.UpdateTimer, opts...)
	expireTaskHandler := connect.NewUnaryHandler(TaskServiceExpireTaskProcedure, svc.ExpireTask, opts...)
	submitTaskHandler := connect.NewUnaryHandler(TaskServiceSubmitTaskProcedure, svc.SubmitTask, opts...)
	claimReviewHandler := connect.NewUnaryHandler(TaskServiceClaimReviewProcedure, svc.ClaimReview, opts...)
	skipReviewHandler := connect.NewUnaryHandler(TaskServiceSkipReviewProcedure, svc.SkipReview, opts...)
	updateReviewTimerHandler := connect.NewUnaryHandler(TaskServiceUpdateReviewTimerProcedure, svc.UpdateReviewTimer, opts...)
	expireReviewHandler := connect.NewUnaryHandler(TaskServiceExpireReviewProcedure, svc.ExpireReview, opts...)
	approveTaskHandler := connect.NewUnaryHandler(TaskServiceApproveTaskProcedure, svc.ApproveTask, opts...)
	rejectTaskHandler := connect.NewUnaryHandler(TaskServiceRejectTaskProcedure, svc.RejectTask, opts...)
	requeueTaskHandler := connect.NewUnaryHandler(TaskServiceRequeueTaskProcedure, svc.RequeueTask, opts...)
	submitReviewerFeedbackHandler := connect.NewUnaryHandler(TaskServiceSubmitReviewerFeedbackProcedure, svc.SubmitReviewerFeedback, opts...)
	listTaskLogsHandler := connect.NewUnaryHandler(TaskServiceListTaskLogsProcedure, svc.ListTaskLogs, opts...)
	return "/labelguild.v1.TaskService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case TaskServiceCreateTaskProcedure:
			createTaskHandler.ServeHTTP(w, r)
		case TaskServiceGetTaskProcedure:
			getTaskHandler.ServeHTTP(w, r)
		case TaskServiceListTasksProcedure:
			listTasksHandler.ServeHTTP(w, r)
		case TaskServiceGetTaskSchemaProcedure:
			getTaskSchemaHandler.ServeHTTP(w, r)
		case TaskServiceClaimTaskProcedure:
			claimTaskHandler.ServeHTTP(w, r)
		case TaskServiceSkipTaskProcedure:
			skipTaskHandler.ServeHTTP(w, r)
		case TaskServiceUpdateTimerProcedure:
			updateTimerHandler.ServeHTTP(w, r)
		case TaskServiceExpireTaskProcedure:
			expireTaskHandler.ServeHTTP(w, r)
		case TaskServiceSubmitTaskProcedure:
			submitTaskHandler.ServeHTTP(w, r)
		case TaskServiceClaimReviewProcedure:
			claimReviewHandler.ServeHTTP(w, r)
		case TaskServiceSkipReviewProcedure:
			skipReviewHandler.ServeHTTP(w, r)
		case TaskServiceUpdateReviewTimerProcedure:
			updateReviewTimerHandler.ServeHTTP(w, r)
		case TaskServiceExpireReviewProcedure:
			expireReviewHandler.ServeHTTP(w, r)
		case TaskServiceApproveTaskProcedure:
			approveTaskHandler.ServeHTTP(w, r)
		case TaskServiceRejectTaskProcedure:
			rejectTaskHandler.ServeHTTP(w, r)
		case TaskServiceRequeueTaskProcedure:
			requeueTaskHandler.ServeHTTP(w, r)
		case TaskServiceSubmitReviewerFeedbackProcedure:
			submitReviewerFeedbackHandler.ServeHTTP(w, r)
		case TaskServiceListTaskLogsProcedure:
			listTaskLogsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

type TaskServiceClient struct {
	createTask             *connect.Client[CreateTaskRequest, CreateTaskResponse]
	getTask                *connect.Client[GetTaskRequest, GetTaskResponse]
	listTasks              *connect.Client[ListTasksRequest, ListTasksResponse]
	getTaskSchema          *connect.Client[GetTaskSchemaRequest, GetTaskSchemaResponse]
	claimTask              *connect.Client[ClaimTaskRequest, ClaimTaskResponse]
	skipTask               *connect.Client[SkipTaskRequest, SkipTaskResponse]
	updateTimer            *connect.Client[UpdateTimerRequest, UpdateTimerResponse]
	expireTask             *connect.Client[ExpireTaskRequest, ExpireTaskResponse]
	submitTask             *connect.Client[SubmitTaskRequest, SubmitTaskResponse]
	claimReview            *connect.Client[ClaimReviewRequest, ClaimReviewResponse]
	skipReview             *connect.Client[SkipReviewRequest, SkipReviewResponse]
	updateReviewTimer      *connect.Client[UpdateReviewTimerRequest, UpdateReviewTimerResponse]
	expireReview           *connect.Client[ExpireReviewRequest, ExpireReviewResponse]
	approveTask            *connect.Client[ApproveTaskRequest, ApproveTaskResponse]
	rejectTask             *connect.Client[RejectTaskRequest, RejectTaskResponse]
	requeueTask            *connect.Client[RequeueTaskRequest, RequeueTaskResponse]
	submitReviewerFeedback *connect.Client[SubmitReviewerFeedbackRequest, SubmitReviewerFeedbackResponse]
	listTaskLogs           *connect.Client[ListTaskLogsRequest, ListTaskLogsResponse]
}

func NewTaskServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TaskServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &TaskServiceClient{
		createTask:             connect.NewClient[CreateTaskRequest, CreateTaskResponse](httpClient, baseURL+TaskServiceCreateTaskProcedure, opts...),
		getTask:                connect.NewClient[GetTaskRequest, GetTaskResponse](httpClient, baseURL+TaskServiceGetTaskProcedure, opts...),
		listTasks:              connect.NewClient[ListTasksRequest, ListTasksResponse](httpClient, baseURL+TaskServiceListTasksProcedure, opts...),
		getTaskSchema:          connect.NewClient[GetTaskSchemaRequest, GetTaskSchemaResponse](httpClient, baseURL+TaskServiceGetTaskSchemaProcedure, opts...),
		claimTask:              connect.NewClient[ClaimTaskRequest, ClaimTaskResponse](httpClient, baseURL+TaskServiceClaimTaskProcedure, opts...),
		skipTask:               connect.NewClient[SkipTaskRequest, SkipTaskResponse](httpClient, baseURL+TaskServiceSkipTaskProcedure, opts...),
		updateTimer:            connect.NewClient[UpdateTimerRequest, UpdateTimerResponse](httpClient, baseURL+TaskServiceUpdateTimerProcedure, opts...),
		expireTask:             connect.NewClient[ExpireTaskRequest, ExpireTaskResponse](httpClient, baseURL+TaskServiceExpireTaskProcedure, opts...),
		submitTask:             connect.NewClient[SubmitTaskRequest, SubmitTaskResponse](httpClient, baseURL+TaskServiceSubmitTaskProcedure, opts...),
		claimReview:            connect.NewClient[ClaimReviewRequest, ClaimReviewResponse](httpClient, baseURL+TaskServiceClaimReviewProcedure, opts...),
		skipReview:             connect.NewClient[SkipReviewRequest, SkipReviewResponse](httpClient, baseURL+TaskServiceSkipReviewProcedure, opts...),
		updateReviewTimer:      connect.NewClient[UpdateReviewTimerRequest, UpdateReviewTimerResponse](httpClient, baseURL+TaskServiceUpdateReviewTimerProcedure, opts...),
		expireReview:           connect.NewClient[ExpireReviewRequest, ExpireReviewResponse](httpClient, baseURL+TaskServiceExpireReviewProcedure, opts...),
		approveTask:            connect.NewClient[ApproveTaskRequest, ApproveTaskResponse](httpClient, baseURL+TaskServiceApproveTaskProcedure, opts...),
		rejectTask:             connect.NewClient[RejectTaskRequest, RejectTaskResponse](httpClient, baseURL+TaskServiceRejectTaskProcedure, opts...),
		requeueTask:            connect.NewClient[RequeueTaskRequest, RequeueTaskResponse](httpClient, baseURL+TaskServiceRequeueTaskProcedure, opts...),
		submitReviewerFeedback: connect.NewClient[SubmitReviewerFeedbackRequest, SubmitReviewerFeedbackResponse](httpClient, baseURL+TaskServiceSubmitReviewerFeedbackProcedure, opts...),
		listTaskLogs:           connect.NewClient[ListTaskLogsRequest, ListTaskLogsResponse](httpClient, baseURL+TaskServiceListTaskLogsProcedure, opts...),
	}
}

func (c *TaskServiceClient) CreateTask(ctx context.Context, req *connect.Request[CreateTaskRequest]) (*connect.Response[CreateTaskResponse], error) {
	return c.createTask.CallUnary(ctx, req)
}

func (c *TaskServiceClient) GetTask(ctx context.Context, req *connect.Request[GetTaskRequest]) (*connect.Response[GetTaskResponse], error) {
	return c.getTask.CallUnary(ctx, req)
}

func (c *TaskServiceClient) ListTasks(ctx context.Context, req *connect.Request[ListTasksRequest]) (*connect.Response[ListTasksResponse], error) {
	return c.listTasks.CallUnary(ctx, req)
}

func (c *TaskServiceClient) GetTaskSchema(ctx context.Context, req *connect.Request[GetTaskSchemaRequest]) (*connect.Response[GetTaskSchemaResponse], error) {
	return c.getTaskSchema.CallUnary(ctx, req)
}

func (c *TaskServiceClient) ClaimTask(ctx context.Context, req *connect.Request[ClaimTaskRequest]) (*connect.Response[ClaimTaskResponse], error) {
	return c.claimTask.CallUnary(ctx, req)
}

func (c *TaskServiceClient) SkipTask(ctx context.Context, req *connect.Request[SkipTaskRequest]) (*connect.Response[SkipTaskResponse], error) {
	return c.skipTask.CallUnary(ctx, req)
}

func (c *TaskServiceClient) UpdateTimer(ctx context.Context, req *connect.Request[UpdateTimerRequest]) (*connect.Response[UpdateTimerResponse], error) {
	return c.updateTimer.CallUnary(ctx, req)
}

func (c *TaskServiceClient) ExpireTask(ctx context.Context, req *connect.Request[ExpireTaskRequest]) (*connect.Response[ExpireTaskResponse], error) {
	return c.expireTask.CallUnary(ctx, req)
}

func (c *TaskServiceClient) SubmitTask(ctx context.Context, req *connect.Request[SubmitTaskRequest]) (*connect.Response[SubmitTaskResponse], error) {
	return c.submitTask.CallUnary(ctx, req)
}

func (c *TaskServiceClient) ClaimReview(ctx context.Context, req *connect.Request[ClaimReviewRequest]) (*connect.Response[ClaimReviewResponse], error) {
	return c.claimReview.CallUnary(ctx, req)
}

func (c *TaskServiceClient) SkipReview(ctx context.Context, req *connect.Request[SkipReviewRequest]) (*connect.Response[SkipReviewResponse], error) {
	return c.skipReview.CallUnary(ctx, req)
}

func (c *TaskServiceClient) UpdateReviewTimer(ctx context.Context, req *connect.Request[UpdateReviewTimerRequest]) (*connect.Response[UpdateReviewTimerResponse], error) {
	return c.updateReviewTimer.CallUnary(ctx, req)
}

func (c *TaskServiceClient) ExpireReview(ctx context.Context, req *connect.Request[ExpireReviewRequest]) (*connect.Response[ExpireReviewResponse], error) {
	return c.expireReview.CallUnary(ctx, req)
}

func (c *TaskServiceClient) ApproveTask(ctx context.Context, req *connect.Request[ApproveTaskRequest]) (*connect.Response[ApproveTaskResponse], error) {
	return c.approveTask.CallUnary(ctx, req)
}

func (c *TaskServiceClient) RejectTask(ctx context.Context, req *connect.Request[RejectTaskRequest]) (*connect.Response[RejectTaskResponse], error) {
	return c.rejectTask.CallUnary(ctx, req)
}

func (c *TaskServiceClient) RequeueTask(ctx context.Context, req *connect.Request[RequeueTaskRequest]) (*connect.Response[RequeueTaskResponse], error) {
	return c.requeueTask.CallUnary(ctx, req)
}

func (c *TaskServiceClient) SubmitReviewerFeedback(ctx context.Context, req *connect.Request[SubmitReviewerFeedbackRequest]) (*connect.Response[SubmitReviewerFeedbackResponse], error) {
	return c.submitReviewerFeedback.CallUnary(ctx, req)
}

func (c *TaskServiceClient) ListTaskLogs(ctx context.Context, req *connect.Request[ListTaskLogsRequest]) (*connect.Response[ListTaskLogsResponse], error) {
	return c.listTaskLogs.CallUnary(ctx, req)
}

type EventServiceHandler interface {
	SubscribeEvents(context.Context, *connect.Request[SubscribeEventsRequest], *connect.ServerStream[Event]) error
}

// NewEventServiceHandler routes every EventService procedure to svc.
func NewEventServiceHandler(svc EventServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	subscribeEventsHandler := connect.NewServerStreamHandler(EventServiceSubscribeEventsProcedure, svc.SubscribeEvents, opts...)
	return "/labelguild.v1.EventService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case EventServiceSubscribeEventsProcedure:
			subscribeEventsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

type EventServiceClient struct {
	subscribeEvents *connect.Client[SubscribeEventsRequest, Event]
}

func NewEventServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *EventServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &EventServiceClient{
		subscribeEvents: connect.NewClient[SubscribeEventsRequest, Event](httpClient, baseURL+EventServiceSubscribeEventsProcedure, opts...),
	}
}

func (c *EventServiceClient) SubscribeEvents(ctx context.Context, req *connect.Request[SubscribeEventsRequest]) (*connect.ServerStreamForClient[Event], error) {
	return c.subscribeEvents.CallServerStream(ctx, req)
}

type PushNotificationServiceHandler interface {
	GetVapidPublicKey(context.Context, *connect.Request[GetVapidPublicKeyRequest]) (*connect.Response[GetVapidPublicKeyResponse], error)
	RegisterPushSubscription(context.Context, *connect.Request[RegisterPushSubscriptionRequest]) (*connect.Response[RegisterPushSubscriptionResponse], error)
	UnregisterPushSubscription(context.Context, *connect.Request[UnregisterPushSubscriptionRequest]) (*connect.Response[UnregisterPushSubscriptionResponse], error)
}

// NewPushNotificationServiceHandler routes every PushNotificationService procedure to svc.
func NewPushNotificationServiceHandler(svc PushNotificationServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	getVapidPublicKeyHandler := connect.NewUnaryHandler(PushNotificationServiceGetVapidPublicKeyProcedure, svc.GetVapidPublicKey, opts...)
	registerPushSubscriptionHandler := connect.NewUnaryHandler(PushNotificationServiceRegisterPushSubscriptionProcedure, svc.RegisterPushSubscription, opts...)
	unregisterPushSubscriptionHandler := connect.NewUnaryHandler(PushNotificationServiceUnregisterPushSubscriptionProcedure, svc.UnregisterPushSubscription, opts...)
	return "/labelguild.v1.PushNotificationService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PushNotificationServiceGetVapidPublicKeyProcedure:
			getVapidPublicKeyHandler.ServeHTTP(w, r)
		case PushNotificationServiceRegisterPushSubscriptionProcedure:
			registerPushSubscriptionHandler.ServeHTTP(w, r)
		case PushNotificationServiceUnregisterPushSubscriptionProcedure:
			unregisterPushSubscriptionHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

type PushNotificationServiceClient struct {
	getVapidPublicKey          *connect.Client[GetVapidPublicKeyRequest, GetVapidPublicKeyResponse]
	registerPushSubscription   *connect.Client[RegisterPushSubscriptionRequest, RegisterPushSubscriptionResponse]
	unregisterPushSubscription *connect.Client[UnregisterPushSubscriptionRequest, UnregisterPushSubscriptionResponse]
}

func NewPushNotificationServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *PushNotificationServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &PushNotificationServiceClient{
		getVapidPublicKey:          connect.NewClient[GetVapidPublicKeyRequest, GetVapidPublicKeyResponse](httpClient, baseURL+PushNotificationServiceGetVapidPublicKeyProcedure, opts...),
		registerPushSubscription:   connect.NewClient[RegisterPushSubscriptionRequest, RegisterPushSubscriptionResponse](httpClient, baseURL+PushNotificationServiceRegisterPushSubscriptionProcedure, opts...),
		unregisterPushSubscription: connect.NewClient[UnregisterPushSubscriptionRequest, UnregisterPushSubscriptionResponse](httpClient, baseURL+PushNotificationServiceUnregisterPushSubscriptionProcedure, opts...),
	}
}

func (c *PushNotificationServiceClient) GetVapidPublicKey(ctx context.Context, req *connect.Request[GetVapidPublicKeyRequest]) (*connect.Response[GetVapidPublicKeyResponse], error) {
	return c.getVapidPublicKey.CallUnary(ctx, req)
}

func (c *PushNotificationServiceClient) RegisterPushSubscription(ctx context.Context, req *connect.Request[RegisterPushSubscriptionRequest]) (*connect.Response[RegisterPushSubscriptionResponse], error) {
	return c.registerPushSubscription.CallUnary(ctx, req)
}

func (c *PushNotificationServiceClient) UnregisterPushSubscription(ctx context.Context, req *connect.Request[UnregisterPushSubscriptionRequest]) (*connect.Response[UnregisterPushSubscriptionResponse], error) {
	return c.unregisterPushSubscription.CallUnary(ctx, req)
}
