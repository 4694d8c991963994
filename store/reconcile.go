package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"despacho_app_go/models"
	"despacho_app_go/services"

	"github.com/google/uuid"
)

// SyncRemote runs the one-shot startup reconciliation. Merge policy:
// remote is authoritative per-document for cases it knows about,
// local-only cases survive untouched; dashboard tasks are replaced
// wholesale. This is not a conflict-free merge; concurrent edits to the
// same case on two devices lose one side.
func (s *Store) SyncRemote(ctx context.Context) error {
	if s.remote == nil {
		return nil
	}

	caseDocs, err := s.remote.GetAll(ctx, services.CollectionCases)
	if err != nil {
		return fmt.Errorf("failed to read remote cases: %w", err)
	}
	taskDocs, err := s.remote.GetAll(ctx, services.CollectionTasks)
	if err != nil {
		return fmt.Errorf("failed to read remote tasks: %w", err)
	}

	s.mu.Lock()
	merged := 0
	for id, raw := range caseDocs {
		var doc remoteCaseDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			log.Printf("[WARNING] Skipping malformed remote case %s: %v", id, err)
			continue
		}
		c := doc.Case
		if c.ID == "" {
			c.ID = id
		}
		if c.Images == nil {
			c.Images = []models.Image{}
		}
		if c.Tasks == nil {
			c.Tasks = []models.Task{}
		}

		_, known := s.tree.Cases[c.ID]
		s.tree.Cases[c.ID] = &c
		if !known {
			s.attachCaseLocked(c.ID, doc.SubjectID)
		}
		merged++
	}

	tasks := make([]models.DashboardTask, 0, len(taskDocs))
	for id, raw := range taskDocs {
		var task models.DashboardTask
		if err := json.Unmarshal(raw, &task); err != nil {
			log.Printf("[WARNING] Skipping malformed remote task %s: %v", id, err)
			continue
		}
		if task.ID == "" {
			task.ID = id
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Date < tasks[j].Date })
	s.tree.DashboardTasks = tasks

	s.persistLocked()
	s.mu.Unlock()

	log.Printf("Startup sync completed: %d remote cases merged, %d dashboard tasks", merged, len(tasks))
	s.bus.Publish(Event{Type: EventDataChanged})
	return nil
}

// attachCaseLocked links a case id to its subject when the remote doc
// named one and no subject holds the id yet. Cases whose subject is
// unknown locally stay reachable through GetCases only.
func (s *Store) attachCaseLocked(caseID, subjectID string) {
	for si := range s.tree.States {
		for sj := range s.tree.States[si].Subjects {
			for _, id := range s.tree.States[si].Subjects[sj].Cases {
				if id == caseID {
					return
				}
			}
		}
	}
	if subjectID == "" {
		return
	}
	if _, subject := s.findSubjectLocked(subjectID); subject != nil {
		subject.Cases = append(subject.Cases, caseID)
	}
}

// ApplyPromotionsSnapshot replaces the local promotions list with a
// pushed remote snapshot, sorted by dateAdded descending. Local
// optimistic inserts are overwritten; the write that created them
// already round-tripped through the remote store, so the snapshot
// carries them.
func (s *Store) ApplyPromotionsSnapshot(snapshot []models.Promotion) {
	promotions := make([]models.Promotion, 0, len(snapshot))
	for _, p := range snapshot {
		promotions = append(promotions, p.Clone())
	}
	sort.SliceStable(promotions, func(i, j int) bool {
		return promotions[i].DateAdded > promotions[j].DateAdded
	})

	s.mu.Lock()
	s.tree.Promotions = promotions
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventPromotionsUpdated})
}

// PushDashboardTask stores a free-floating task locally and mirrors it
// to the remote tasks collection. Used by the import path for rows that
// match no case.
func (s *Store) PushDashboardTask(task models.DashboardTask) models.DashboardTask {
	if task.ID == "" {
		task.ID = uuid.New().String()
	}

	s.mu.Lock()
	s.tree.DashboardTasks = append(s.tree.DashboardTasks, task)
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventDataChanged})
	s.mirror("dashboard task create", func(ctx context.Context) error {
		return s.remote.Set(ctx, services.CollectionTasks, task.ID, task)
	})
	return task
}
