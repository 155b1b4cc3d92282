package models

import (
	"fmt"
	"time"
)

type DecisionStatus string

const (
	DecisionConfigured DecisionStatus = "configured"
	DecisionPending    DecisionStatus = "pending"
	DecisionRejected   DecisionStatus = "rejected"
)

func (s DecisionStatus) Valid() bool {
	return s == DecisionConfigured || s == DecisionPending || s == DecisionRejected
}

// DecisionAction is what the analyst chose for an axis.
type DecisionAction string

const (
	ActionAccept DecisionAction = "accept"
	ActionReject DecisionAction = "reject"
	ActionDefer  DecisionAction = "defer"
)

// Status maps an action to the stored decision status.
func (a DecisionAction) Status() (DecisionStatus, error) {
	switch a {
	case ActionAccept:
		return DecisionConfigured, nil
	case ActionReject:
		return DecisionRejected, nil
	case ActionDefer:
		return DecisionPending, nil
	default:
		return "", fmt.Errorf("unknown decision action %q", a)
	}
}

// Decision is the persisted human verdict for one axis.
type Decision struct {
	Key             string         `json:"decision_key"`
	Axis            AxisKey        `json:"axis"`
	Status          DecisionStatus `json:"decision_status"`
	Exit            ExitConfig     `json:"exit_config"`
	Notes           string         `json:"additional_notes,omitempty"`
	LearningSummary StatsSummary   `json:"learning_summary"`
	DecidedAt       time.Time      `json:"decided_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// DecisionEvent is published whenever a decision is recorded.
type DecisionEvent struct {
	EventID    string         `json:"event_id"`
	Type       string         `json:"type"`
	Key        string         `json:"decision_key"`
	Axis       AxisKey        `json:"axis"`
	Status     DecisionStatus `json:"decision_status"`
	OccurredAt time.Time      `json:"occurred_at"`
}

const EventDecisionRecorded = "decision.recorded"
