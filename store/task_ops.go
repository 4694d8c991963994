package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"despacho_app_go/models"
	"despacho_app_go/services"

	"github.com/google/uuid"
)

// TaskInput carries the fields for a new task
type TaskInput struct {
	Title  string           `json:"title"`
	Date   string           `json:"date"`
	Urgent bool             `json:"urgent"`
	By     models.Signature `json:"by"`
}

// AddTask appends a task to a case. Remotely it tries the single-element
// array append first and falls back to rewriting the whole tasks array.
func (s *Store) AddTask(caseID string, in TaskInput) (*models.Task, error) {
	s.mu.Lock()
	c, ok := s.tree.Cases[caseID]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}

	by := in.By
	if by.At.IsZero() {
		by.At = time.Now()
	}
	task := models.Task{
		ID:        uuid.New().String(),
		Title:     in.Title,
		Date:      in.Date,
		Urgent:    in.Urgent,
		Completed: false,
		CreatedBy: by,
	}
	c.Tasks = append(c.Tasks, task)
	s.persistLocked()

	tasksCopy := cloneTasks(c.Tasks)
	caseCopy := *c.Clone()
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventDataChanged})
	s.mirror("task add", func(ctx context.Context) error {
		err := s.remote.ArrayAppend(ctx, services.CollectionCases, caseID, "tasks", task)
		if err == nil {
			return nil
		}
		log.Printf("[WARNING] Remote task append failed, rewriting tasks array: %v", err)
		return s.writeTasksArray(ctx, caseID, tasksCopy, caseCopy)
	})

	clone := task.Clone()
	return &clone, nil
}

// UpdateTask partially updates a task. Setting completed to true records
// the completing signature; setting it to false always removes it.
// The whole tasks array is rewritten remotely; last writer wins at the
// array level.
func (s *Store) UpdateTask(caseID, taskID string, upd models.TaskUpdate) error {
	s.mu.Lock()
	c, ok := s.tree.Cases[caseID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}
	task := c.FindTask(taskID)
	if task == nil {
		s.mu.Unlock()
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}

	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Date != nil {
		task.Date = *upd.Date
	}
	if upd.Urgent != nil {
		task.Urgent = *upd.Urgent
	}
	if upd.Completed != nil {
		task.Completed = *upd.Completed
		if task.Completed {
			by := upd.By
			if by == nil {
				by = &models.Signature{At: time.Now()}
			} else if by.At.IsZero() {
				by.At = time.Now()
			}
			task.CompletedBy = by
		} else {
			task.CompletedBy = nil
		}
	}
	s.persistLocked()

	tasksCopy := cloneTasks(c.Tasks)
	caseCopy := *c.Clone()
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventDataChanged})
	s.mirror("task update", func(ctx context.Context) error {
		return s.writeTasksArray(ctx, caseID, tasksCopy, caseCopy)
	})
	return nil
}

// writeTasksArray rewrites the full tasks array, creating the remote
// document from the local case when it does not exist yet.
func (s *Store) writeTasksArray(ctx context.Context, caseID string, tasks []models.Task, full models.Case) error {
	err := s.remote.Update(ctx, services.CollectionCases, caseID, map[string]interface{}{"tasks": tasks})
	if errors.Is(err, services.ErrDocumentNotFound) {
		return s.remote.Set(ctx, services.CollectionCases, caseID, remoteCaseDoc{Case: full})
	}
	return err
}

func cloneTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Clone())
	}
	return out
}
