package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/client"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/color"
)

var (
	app = kingpin.New("labelguild", "Labeling task client for annotators and reviewers")

	serverURL = app.Flag("server", "LabelGuild server URL").Envar("LABELGUILD_SERVER_URL").Default("http://localhost:3100").String()
	apiKey    = app.Flag("api-key", "API key").Envar("LABELGUILD_API_KEY").String()
	workerID  = app.Flag("worker", "Worker ID to act as").Envar("LABELGUILD_WORKER_ID").String()

	// Task commands
	taskCmd = app.Command("task", "Task management commands")

	taskCreateCmd     = taskCmd.Command("create", "Create a pending task")
	taskCreateProject = taskCreateCmd.Arg("project", "Project ID").Required().String()
	taskCreatePayload = taskCreateCmd.Flag("payload", "Task payload as a JSON object").String()

	taskGetCmd = taskCmd.Command("get", "Show task details")
	taskGetID  = taskGetCmd.Arg("id", "Task ID").Required().String()

	taskListCmd      = taskCmd.Command("list", "List tasks")
	taskListProject  = taskListCmd.Flag("project", "Filter by project").String()
	taskListStatus   = taskListCmd.Flag("status", "Filter by status").String()
	taskListAssignee = taskListCmd.Flag("assigned-to", "Filter by holder").String()
	taskListLimit    = taskListCmd.Flag("limit", "Page size").Default("50").Int32()
	taskListOffset   = taskListCmd.Flag("offset", "Page offset").Int32()

	// Annotator commands
	claimCmd = app.Command("claim", "Claim a pending task")
	claimID  = claimCmd.Arg("id", "Task ID").Required().String()

	skipCmd     = app.Command("skip", "Release a claimed task, keeping the time spent")
	skipID      = skipCmd.Arg("id", "Task ID").Required().String()
	skipSeconds = skipCmd.Flag("seconds", "Elapsed seconds").Int64()

	submitCmd     = app.Command("submit", "Submit answers for a claimed task")
	submitID      = submitCmd.Arg("id", "Task ID").Required().String()
	submitValues  = submitCmd.Flag("values", "Answers as a JSON object").Required().String()
	submitSeconds = submitCmd.Flag("seconds", "Elapsed seconds").Required().Int64()

	// Review commands
	reviewCmd = app.Command("review", "Review commands")

	reviewClaimCmd = reviewCmd.Command("claim", "Claim a submitted task for review")
	reviewClaimID  = reviewClaimCmd.Arg("id", "Task ID").Required().String()

	reviewApproveCmd      = reviewCmd.Command("approve", "Approve a reviewed task")
	reviewApproveID       = reviewApproveCmd.Arg("id", "Task ID").Required().String()
	reviewApproveRating   = reviewApproveCmd.Flag("rating", "Rating of the annotation, 1 to 5").Required().Int32()
	reviewApproveFeedback = reviewApproveCmd.Flag("feedback", "Feedback for the annotator").String()
	reviewApproveValues   = reviewApproveCmd.Flag("values", "Corrected answers as a JSON object").String()
	reviewApproveSeconds  = reviewApproveCmd.Flag("seconds", "Elapsed seconds").Required().Int64()

	reviewRejectCmd      = reviewCmd.Command("reject", "Reject a reviewed task")
	reviewRejectID       = reviewRejectCmd.Arg("id", "Task ID").Required().String()
	reviewRejectRating   = reviewRejectCmd.Flag("rating", "Rating of the annotation, 1 to 5").Int32()
	reviewRejectFeedback = reviewRejectCmd.Flag("feedback", "Feedback for the annotator").String()
	reviewRejectSeconds  = reviewRejectCmd.Flag("seconds", "Elapsed seconds").Required().Int64()

	requeueCmd = app.Command("requeue", "Freeze a rejected task and queue a fresh copy")
	requeueID  = requeueCmd.Arg("id", "Task ID").Required().String()

	feedbackCmd      = app.Command("feedback", "Rate the review of your task")
	feedbackID       = feedbackCmd.Arg("id", "Task ID").Required().String()
	feedbackRating   = feedbackCmd.Flag("rating", "Rating of the review, 1 to 5").Required().Int32()
	feedbackFeedback = feedbackCmd.Flag("feedback", "Feedback for the reviewer").String()

	logsCmd    = app.Command("logs", "Show the audit log of a task")
	logsID     = logsCmd.Arg("id", "Task ID").Required().String()
	logsActor  = logsCmd.Flag("actor", "Only show entries by this worker").String()
	logsEvents = logsCmd.Flag("event", "Only show entries of this event type (repeatable)").Strings()

	// Interactive session
	workCmd    = app.Command("work", "Claim a task and keep its timer running until answers are read from stdin")
	workID     = workCmd.Arg("id", "Task ID").Required().String()
	workReview = workCmd.Flag("review", "Work as reviewer").Bool()
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.NewTaskClient(*serverURL, *apiKey, *workerID)
	if err := run(ctx, c, command); err != nil {
		fmt.Fprintln(os.Stderr, color.Fail("Error: %v", err))
		for _, v := range cerr.Violations(err) {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", cerr.FieldName(v), v.GetMessage())
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, c *client.TaskClient, command string) error {
	switch command {
	case taskCreateCmd.FullCommand():
		payload, err := parseObject(*taskCreatePayload)
		if err != nil {
			return err
		}
		t, err := c.CreateTask(ctx, *taskCreateProject, payload)
		if err != nil {
			return err
		}
		printTask(t)
	case taskGetCmd.FullCommand():
		t, err := c.GetTask(ctx, *taskGetID)
		if err != nil {
			return err
		}
		printTask(t)
	case taskListCmd.FullCommand():
		resp, err := c.ListTasks(ctx, &apiv1.ListTasksRequest{
			ProjectID:  *taskListProject,
			Status:     *taskListStatus,
			AssignedTo: *taskListAssignee,
			Pagination: &apiv1.Pagination{Limit: *taskListLimit, Offset: *taskListOffset},
		})
		if err != nil {
			return err
		}
		for _, t := range resp.Tasks {
			fmt.Printf("%s  %-10s %-18s %s\n", t.ID, t.ProjectID, color.Status(t.Status), t.AssignedTo)
		}
		if resp.Pagination != nil {
			fmt.Printf("%d of %d\n", len(resp.Tasks), resp.Pagination.Total)
		}
	case claimCmd.FullCommand():
		resp, err := c.Claim(ctx, *claimID)
		if err != nil {
			return err
		}
		if !resp.Claimed {
			return fmt.Errorf("%s: %s", client.ErrNotClaimed, resp.Message)
		}
		printTask(resp.Task)
	case skipCmd.FullCommand():
		t, err := c.Skip(ctx, *skipID, *skipSeconds)
		if err != nil {
			return err
		}
		printTask(t)
	case submitCmd.FullCommand():
		values, err := parseObject(*submitValues)
		if err != nil {
			return err
		}
		resp, err := c.Submit(ctx, *submitID, values, *submitSeconds)
		if err != nil {
			return err
		}
		printEarnings(resp.EarningsCents, resp.TimeSpent)
		printTask(resp.Task)
	case reviewClaimCmd.FullCommand():
		resp, err := c.ClaimReview(ctx, *reviewClaimID)
		if err != nil {
			return err
		}
		if !resp.Claimed {
			return fmt.Errorf("%s: %s", client.ErrNotClaimed, resp.Message)
		}
		printTask(resp.Task)
	case reviewApproveCmd.FullCommand():
		values, err := parseObject(*reviewApproveValues)
		if err != nil {
			return err
		}
		resp, err := c.Approve(ctx, &apiv1.ApproveTaskRequest{
			TaskID:   *reviewApproveID,
			Values:   values,
			Rating:   *reviewApproveRating,
			Seconds:  *reviewApproveSeconds,
			Feedback: *reviewApproveFeedback,
		})
		if err != nil {
			return err
		}
		printEarnings(resp.EarningsCents, resp.TimeSpent)
		printTask(resp.Task)
	case reviewRejectCmd.FullCommand():
		resp, err := c.Reject(ctx, &apiv1.RejectTaskRequest{
			TaskID:   *reviewRejectID,
			Rating:   *reviewRejectRating,
			Seconds:  *reviewRejectSeconds,
			Feedback: *reviewRejectFeedback,
		})
		if err != nil {
			return err
		}
		printEarnings(resp.EarningsCents, *reviewRejectSeconds)
		printTask(resp.Task)
	case requeueCmd.FullCommand():
		resp, err := c.Requeue(ctx, *requeueID)
		if err != nil {
			return err
		}
		fmt.Printf("Frozen %s, queued %s\n", resp.Frozen.ID, resp.NewTaskID)
	case feedbackCmd.FullCommand():
		t, err := c.ReviewerFeedback(ctx, *feedbackID, *feedbackRating, *feedbackFeedback)
		if err != nil {
			return err
		}
		printTask(t)
	case logsCmd.FullCommand():
		logs, err := c.Logs(ctx, *logsID, *logsActor, *logsEvents...)
		if err != nil {
			return err
		}
		for _, l := range logs {
			fmt.Printf("%s %s %-16s %s\n", l.CreatedAt.Format("2006-01-02 15:04:05"), color.WorkerPrefix(l.Actor), l.Event, l.Message)
		}
	case workCmd.FullCommand():
		role := client.RoleAnnotator
		if *workReview {
			role = client.RoleReviewer
		}
		return work(ctx, c, role, *workID, os.Stdin)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
	return nil
}

func parseObject(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var v map[string]any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("invalid JSON object: %w", err)
	}
	return v, nil
}

func printTask(t *apiv1.Task) {
	if t == nil {
		return
	}
	fmt.Printf("Task:     %s\n", t.ID)
	fmt.Printf("Project:  %s\n", t.ProjectID)
	fmt.Printf("Status:   %s\n", color.Status(t.Status))
	if t.AssignedTo != "" {
		fmt.Printf("Holder:   %s\n", color.WorkerPrefix(t.AssignedTo))
	}
	if t.ReviewedBy != "" {
		fmt.Printf("Reviewer: %s\n", color.WorkerPrefix(t.ReviewedBy))
	}
	fmt.Printf("Time:     %ds annotating, %ds reviewing\n", t.AnnotatorTimeSpent, t.ReviewerTimeSpent)
	if t.LastExpireReason != "" {
		fmt.Printf("Expired:  %d time(s), last by %s\n", t.ExpiredCount, t.LastExpireReason)
	}
}

func printEarnings(cents, seconds int64) {
	fmt.Printf("Earned %d.%02d for %ds\n", cents/100, cents%100, seconds)
}
