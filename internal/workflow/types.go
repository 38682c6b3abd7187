// Package workflow defines core types shared across subsystems.
package workflow

import (
	"time"
)

// Frequency is how often a workflow should run.
type Frequency string

// Frequency values persisted in the workflow store.
const (
	FrequencyQuarterHour Frequency = "15min"
	FrequencyHourly      Frequency = "hourly"
	FrequencyDaily       Frequency = "daily"
)

// Status represents the lifecycle state of a workflow.
type Status string

// Status values persisted in the workflow store.
const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusError  Status = "error"
)

// NotifyType selects the delivery channel for workflow results.
type NotifyType string

// Notification channels.
const (
	NotifyEmail NotifyType = "email"
	NotifyInApp NotifyType = "in-app"
)

// Workflow is a user-defined recurring job: fetch a URL, summarize it
// with a prompt, deliver the result.
type Workflow struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	URL        string     `json:"url"`
	Prompt     string     `json:"prompt"`
	Frequency  Frequency  `json:"frequency"`
	NotifyType NotifyType `json:"notify_type"`
	Email      string     `json:"email,omitempty"`
	LastRun    *time.Time `json:"last_run,omitempty"`
	Status     Status     `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Update carries the fields the runner mutates after an execution attempt.
// Nil fields are left untouched; writes are last-write-wins.
type Update struct {
	LastRun *time.Time
	Status  *Status
}

// Result is one persisted execution outcome, success or failure.
type Result struct {
	ID         string         `json:"id"`
	WorkflowID string         `json:"workflow_id"`
	Summary    string         `json:"summary"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Seen       bool           `json:"seen"`
}

// Extraction is the transient outcome of the extraction cascade. It is
// consumed immediately by the runner and never persisted as-is.
type Extraction struct {
	Success bool
	Method  string
	Title   string
	Text    string
	Error   string
}

// RunReport summarizes a single runner attempt for one workflow.
type RunReport struct {
	WorkflowID string
	Ran        bool
	Success    bool
	Method     string
	Summary    string
	Notified   bool
	Error      string
}

// PassReport aggregates one scheduling pass over all active workflows.
type PassReport struct {
	Started   time.Time
	Processed int
	Ran       int
	Succeeded int
	Failed    int
	Reports   []RunReport
}
