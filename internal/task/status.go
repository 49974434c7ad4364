package task

import (
	"fmt"
	"slices"

	"github.com/kazz187/labelguild/pkg/cerr"
)

type Status string

const (
	StatusPending          Status = "pending"
	StatusInProgress       Status = "in_progress"
	StatusSubmitted        Status = "submitted"
	StatusCompleted        Status = "completed"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
	StatusRejectedRequeued Status = "rejected_requeued"
)

var AllStatuses = []Status{
	StatusPending,
	StatusInProgress,
	StatusSubmitted,
	StatusCompleted,
	StatusApproved,
	StatusRejected,
	StatusRejectedRequeued,
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !slices.Contains(AllStatuses, st) {
		return "", cerr.NewError(cerr.InvalidArgument, fmt.Sprintf("unknown status %q", s), nil)
	}
	return st, nil
}

// Reviewable statuses accept a reviewer claim, approve and reject.
func (s Status) Reviewable() bool {
	return s == StatusSubmitted || s == StatusCompleted
}

// Reviewed statuses carry a finished review and accept reviewer feedback. A
// requeued task keeps the rejection that froze it.
func (s Status) Reviewed() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusRejectedRequeued
}

// Terminal statuses have no outgoing transition on their own record.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejectedRequeued
}

type Event string

const (
	EventClaim   Event = "claim"
	EventSkip    Event = "skip"
	EventExpire  Event = "expire"
	EventSubmit  Event = "submit"
	EventApprove Event = "approve"
	EventReject  Event = "reject"
	EventRequeue Event = "requeue"
)

// transitions is the complete status state machine. Reviewer claim, skip and
// expire and the reviewer feedback stage leave the status unchanged and are
// guarded separately.
var transitions = map[Status]map[Event][]Status{
	StatusPending: {
		EventClaim: {StatusInProgress},
	},
	StatusInProgress: {
		EventSkip:   {StatusPending},
		EventExpire: {StatusPending},
		EventSubmit: {StatusSubmitted, StatusCompleted},
	},
	StatusSubmitted: {
		EventApprove: {StatusApproved},
		EventReject:  {StatusRejected},
	},
	StatusCompleted: {
		EventApprove: {StatusApproved},
		EventReject:  {StatusRejected},
	},
	StatusRejected: {
		EventRequeue: {StatusRejectedRequeued},
	},
}

// CanTransition reports whether event moves a task from s to to.
func (s Status) CanTransition(event Event, to Status) bool {
	return slices.Contains(transitions[s][event], to)
}

func checkTransition(from Status, event Event, to Status) error {
	if from.CanTransition(event, to) {
		return nil
	}
	return cerr.NewError(cerr.FailedPrecondition,
		fmt.Sprintf("cannot %s a task in status %s", event, from), nil)
}
