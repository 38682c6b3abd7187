// Package memory provides an in-memory store for development/testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/aera-dev/aera/internal/workflow"
)

// Store keeps workflows and results in maps guarded by one mutex.
type Store struct {
	mu        sync.RWMutex
	workflows map[string]workflow.Workflow
	results   map[string][]workflow.Result
}

// New constructs a Store.
func New() *Store {
	return &Store{
		workflows: make(map[string]workflow.Workflow),
		results:   make(map[string][]workflow.Result),
	}
}

// ListActive returns workflows with active status.
func (s *Store) ListActive(_ context.Context) ([]workflow.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []workflow.Workflow
	for _, wf := range s.workflows {
		if wf.Status == workflow.StatusActive {
			out = append(out, wf)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByUser returns a user's workflows, newest first.
func (s *Store) GetByUser(_ context.Context, userID string) ([]workflow.Workflow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []workflow.Workflow
	for _, wf := range s.workflows {
		if wf.UserID == userID {
			out = append(out, wf)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Create stores a new workflow.
func (s *Store) Create(_ context.Context, wf workflow.Workflow) (workflow.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.workflows[wf.ID]; exists {
		return workflow.Workflow{}, workflow.ErrExists
	}
	s.workflows[wf.ID] = wf
	return wf, nil
}

// Update applies the non-nil fields of update, last-write-wins.
func (s *Store) Update(_ context.Context, id string, update workflow.Update) (workflow.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, ok := s.workflows[id]
	if !ok {
		return workflow.Workflow{}, workflow.ErrNotFound
	}
	if update.LastRun != nil {
		wf.LastRun = update.LastRun
	}
	if update.Status != nil {
		wf.Status = *update.Status
	}
	wf.UpdatedAt = time.Now().UTC()
	s.workflows[id] = wf
	return wf, nil
}

// Delete removes a workflow and its results.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.workflows[id]; !ok {
		return workflow.ErrNotFound
	}
	delete(s.workflows, id)
	delete(s.results, id)
	return nil
}

// CreateResult appends a result row for its workflow.
func (s *Store) CreateResult(_ context.Context, result workflow.Result) (workflow.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[result.WorkflowID] = append(s.results[result.WorkflowID], result)
	return result, nil
}

// ListResults returns a workflow's results, newest first.
func (s *Store) ListResults(_ context.Context, workflowID string) ([]workflow.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := append([]workflow.Result(nil), s.results[workflowID]...)
	sort.Slice(results, func(i, j int) bool { return results[i].Timestamp.After(results[j].Timestamp) })
	return results, nil
}

// MarkResultSeen flips the seen flag on one result.
func (s *Store) MarkResultSeen(_ context.Context, resultID string) (workflow.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for wfID, results := range s.results {
		for i, r := range results {
			if r.ID == resultID {
				r.Seen = true
				s.results[wfID][i] = r
				return r, nil
			}
		}
	}
	return workflow.Result{}, workflow.ErrNotFound
}
