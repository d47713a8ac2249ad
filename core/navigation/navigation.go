package navigation

import (
	"time"

	"github.com/google/uuid"
)

// Trigger describes what caused a navigation.
type Trigger uint8

const (
	TriggerAPI Trigger = iota
	TriggerPopState
	TriggerHashChange
	TriggerLink
)

var triggerNames = [...]string{
	TriggerAPI:        "api",
	TriggerPopState:   "popstate",
	TriggerHashChange: "hashchange",
	TriggerLink:       "link",
}

func (t Trigger) String() string {
	if int(t) < len(triggerNames) {
		return triggerNames[t]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (t Trigger) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// FromBrowser reports whether the browser already reflects the URL of the
// navigation, in which case it must not be written back.
func (t Trigger) FromBrowser() bool {
	return t == TriggerPopState || t == TriggerHashChange
}

// TransitionPlan controls how a new instruction combines with the active tree.
type TransitionPlan uint8

const (
	// PlanReplace replaces the whole active tree with the new instruction.
	PlanReplace TransitionPlan = iota
	// PlanAppend keeps the content of viewports the new instruction does not name.
	PlanAppend
)

func (p TransitionPlan) String() string {
	if p == PlanAppend {
		return "append"
	}
	return "replace"
}

// HistoryStrategy selects how a committed URL is written to the history backend.
type HistoryStrategy uint8

const (
	HistoryPush HistoryStrategy = iota
	HistoryReplace
	HistoryNone
)

func (s HistoryStrategy) String() string {
	switch s {
	case HistoryReplace:
		return "replace"
	case HistoryNone:
		return "none"
	default:
		return "push"
	}
}

// Options are the per-navigation settings supplied to Router.Load.
type Options struct {
	TransitionPlan  TransitionPlan
	HistoryStrategy HistoryStrategy
	Trigger         Trigger
}

// Navigation is the metadata object identifying one transition attempt.
// It is immutable once the transition has started.
type Navigation struct {
	ID            int64     `json:"id"`
	CorrelationID string    `json:"correlation_id"`
	Trigger       Trigger   `json:"trigger"`
	Instruction   string    `json:"instruction"`
	Options       Options   `json:"-"`
	StartedAt     time.Time `json:"started_at"`

	// PreviousID is the ID of the navigation that produced the tree this one
	// starts from, zero for the first one.
	PreviousID int64 `json:"previous_id,omitempty"`
}

// New creates navigation metadata for attempt id.
func New(id int64, instruction string, opts Options, previousID int64) *Navigation {
	return &Navigation{
		ID:            id,
		CorrelationID: uuid.New().String(),
		Trigger:       opts.Trigger,
		Instruction:   instruction,
		Options:       opts,
		StartedAt:     time.Now(),
		PreviousID:    previousID,
	}
}
