package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sourcegraph/conc/pool"

	"github.com/kazz187/labelguild/internal/apiv1"
	"github.com/kazz187/labelguild/internal/client"
	"github.com/kazz187/labelguild/internal/expiration"
	"github.com/kazz187/labelguild/internal/schema"
	"github.com/kazz187/labelguild/internal/session"
	"github.com/kazz187/labelguild/internal/timer"
	"github.com/kazz187/labelguild/pkg/cerr"
	"github.com/kazz187/labelguild/pkg/color"
	"github.com/kazz187/labelguild/pkg/panicerr"
)

// reviewDecision is the stdin document a reviewer sends.
type reviewDecision struct {
	Decision string         `json:"decision"`
	Rating   int32          `json:"rating"`
	Feedback string         `json:"feedback"`
	Values   map[string]any `json:"values"`
}

func work(ctx context.Context, c *client.TaskClient, role client.Role, taskID string, in io.Reader) error {
	who := *workerID
	w, err := c.Open(ctx, role, taskID, timer.SystemClock{},
		session.WithOnWarn(func(o expiration.Outcome) {
			if o.GraceSeconds > 0 {
				fmt.Fprintln(os.Stderr, color.Warn("Time limit reached, %ds left before the task expires", o.GraceSeconds))
				return
			}
			fmt.Fprintln(os.Stderr, color.Warn("Time limit reached, further time is not paid"))
		}),
		session.WithOnExpire(func(o expiration.Outcome, err error) {
			fmt.Fprintln(os.Stderr, color.Fail("Task expired (%s)", o.Reason))
			if err != nil {
				fmt.Fprintln(os.Stderr, color.Fail("Failed to report expiration: %v", err))
			}
		}),
	)
	if err != nil {
		return err
	}
	color.Fprintf(os.Stdout, who, "working on %s as %s, resumed at %ds\n", taskID, role, w.Elapsed())
	printForm(w.Schema)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runner := pool.New().WithContext(runCtx)
	runner.Go(panicerr.Guard("session", func(ctx context.Context) error {
		if err := w.Run(ctx, nil); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	}))
	defer func() {
		cancel()
		_ = runner.Wait()
	}()

	// stdin cannot be interrupted, so the reader is left behind on exit.
	docs := make(chan json.RawMessage)
	readErr := make(chan error, 1)
	go func() {
		dec := json.NewDecoder(in)
		for {
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				readErr <- err
				return
			}
			select {
			case docs <- raw:
			case <-runCtx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-w.Done():
			return cerr.NewError(cerr.DeadlineExceeded, "task expired before it was finished", nil)
		case <-ctx.Done():
			return release(w, who)
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				return release(w, who)
			}
			return fmt.Errorf("failed to read answers: %w", err)
		case raw := <-docs:
			err := finish(ctx, w, raw, who)
			if err == nil {
				return nil
			}
			if !cerr.IsCode(err, cerr.InvalidArgument) {
				return err
			}
			fmt.Fprintln(os.Stderr, color.Warn("Not accepted: %v", err))
			for _, v := range cerr.Violations(err) {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", cerr.FieldName(v), v.GetMessage())
			}
		}
	}
}

func finish(ctx context.Context, w *client.Work, raw json.RawMessage, who string) error {
	if w.Role == client.RoleAnnotator {
		var values map[string]any
		if err := json.Unmarshal(raw, &values); err != nil {
			return cerr.NewError(cerr.InvalidArgument, "answers must be a JSON object", err)
		}
		resp, err := w.Submit(ctx, values)
		if err != nil {
			return err
		}
		color.Fprintf(os.Stdout, who, "submitted %s, now %s\n", w.TaskID(), color.Status(resp.Task.Status))
		printEarnings(resp.EarningsCents, resp.TimeSpent)
		return nil
	}

	var d reviewDecision
	if err := json.Unmarshal(raw, &d); err != nil {
		return cerr.NewError(cerr.InvalidArgument, "review decision must be a JSON object", err)
	}
	var (
		t     *apiv1.Task
		cents int64
	)
	switch d.Decision {
	case "approve":
		resp, err := w.Approve(ctx, d.Values, d.Rating, d.Feedback)
		if err != nil {
			return err
		}
		t, cents = resp.Task, resp.EarningsCents
	case "reject":
		resp, err := w.Reject(ctx, d.Rating, d.Feedback)
		if err != nil {
			return err
		}
		t, cents = resp.Task, resp.EarningsCents
	default:
		return cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("decision must be approve or reject, got %q", d.Decision), nil)
	}
	color.Fprintf(os.Stdout, who, "reviewed %s, now %s\n", w.TaskID(), color.Status(t.Status))
	printEarnings(cents, t.ReviewerTimeSpent)
	return nil
}

// release skips the task so the time spent stays with it.
func release(w *client.Work, who string) error {
	seconds := w.Elapsed()
	if err := w.Skip(context.Background()); err != nil {
		return fmt.Errorf("failed to release %s: %w", w.TaskID(), err)
	}
	color.Fprintf(os.Stdout, who, "released %s after %ds\n", w.TaskID(), seconds)
	return nil
}

func printForm(form *apiv1.GetTaskSchemaResponse) {
	if len(form.Payload) > 0 {
		payload, _ := json.MarshalIndent(form.Payload, "", "  ")
		fmt.Printf("Payload:\n%s\n", payload)
	}
	fmt.Println("Fields:")
	form.Schema.Walk(func(f schema.Field) bool {
		b := f.Common()
		mark := ""
		if b.Required {
			mark = " (required)"
		}
		fmt.Printf("  %-20s %s%s\n", b.ID, f.Kind(), mark)
		return true
	})
}
