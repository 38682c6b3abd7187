package workflow

import (
	"context"
	"time"
)

// Store persists workflow definitions and their historical results.
type Store interface {
	ListActive(ctx context.Context) ([]Workflow, error)
	GetByUser(ctx context.Context, userID string) ([]Workflow, error)
	Create(ctx context.Context, wf Workflow) (Workflow, error)
	Update(ctx context.Context, id string, update Update) (Workflow, error)
	Delete(ctx context.Context, id string) error
	CreateResult(ctx context.Context, result Result) (Result, error)
	ListResults(ctx context.Context, workflowID string) ([]Result, error)
	MarkResultSeen(ctx context.Context, resultID string) (Result, error)
}

// Extractor turns a URL into readable text.
type Extractor interface {
	Extract(ctx context.Context, url string) Extraction
}

// Summarizer condenses extracted text according to a user prompt.
type Summarizer interface {
	Summarize(ctx context.Context, text, prompt string) (string, error)
}

// Notifier delivers a result to a user. A delivery attempt reports its
// outcome but is best-effort; callers must not fail a workflow on it.
type Notifier interface {
	SendEmail(ctx context.Context, msg EmailMessage) SendOutcome
}

// EmailMessage is the payload handed to a Notifier.
type EmailMessage struct {
	To      string
	Subject string
	Summary string
	Title   string
}

// SendOutcome reports a notification attempt. An unconfigured notifier
// returns Success=false with an explanatory Error, not a Go error.
type SendOutcome struct {
	Success bool
	Error   string
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces row IDs (UUIDs).
type IDGenerator interface {
	NewID() (string, error)
}
