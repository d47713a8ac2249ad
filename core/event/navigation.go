package event

import "time"

// NavigationStart is published when a transition begins.
type NavigationStart struct {
	NavigationID  int64  `json:"navigation_id"`
	CorrelationID string `json:"correlation_id"`
	Trigger       string `json:"trigger"`
	Instruction   string `json:"instruction"`
}

// NavigationEnd is published when a transition commits.
type NavigationEnd struct {
	NavigationID  int64         `json:"navigation_id"`
	CorrelationID string        `json:"correlation_id"`
	Trigger       string        `json:"trigger"`
	URL           string        `json:"url"`
	Title         string        `json:"title,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// NavigationCancel is published when a transition is superseded or rejected.
type NavigationCancel struct {
	NavigationID  int64  `json:"navigation_id"`
	CorrelationID string `json:"correlation_id"`
	Trigger       string `json:"trigger"`
	Reason        string `json:"reason"`
}

// NavigationError is published when a transition fails.
type NavigationError struct {
	NavigationID  int64  `json:"navigation_id"`
	CorrelationID string `json:"correlation_id"`
	Trigger       string `json:"trigger"`
	Error         string `json:"error"`
}

// LocationChanged is published once per committed transition caused by the
// history backend.
type LocationChanged struct {
	Trigger string `json:"trigger"`
	URL     string `json:"url"`
}
