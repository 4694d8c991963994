package store

import (
	"context"
	"fmt"
	"time"

	"despacho_app_go/models"
	"despacho_app_go/services"
)

// CaseInput carries the fields for a new case
type CaseInput struct {
	Actor      string `json:"actor"`
	Demandado  string `json:"demandado"`
	Expediente string `json:"expediente"`
	Juzgado    string `json:"juzgado"`
}

// remoteCaseDoc is the remote mirror of a case. It carries the owning
// subject id so another device can attach an unknown case to the right
// subject during reconciliation; the jurisdiction tree itself is never
// synced.
type remoteCaseDoc struct {
	models.Case
	SubjectID string `json:"subjectId,omitempty"`
}

// AddSubject appends a subject with a derived id to a state. The
// jurisdiction tree is local-only by design, so there is no remote
// mirror for this operation.
func (s *Store) AddSubject(stateID, name string) (*models.Subject, error) {
	id := models.SubjectID(stateID, name)

	s.mu.Lock()
	var state *models.State
	for si := range s.tree.States {
		if s.tree.States[si].ID == stateID {
			state = &s.tree.States[si]
			break
		}
	}
	if state == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("state %s: %w", stateID, ErrNotFound)
	}
	for _, subject := range state.Subjects {
		if subject.ID == id {
			s.mu.Unlock()
			return nil, fmt.Errorf("subject %s already exists", id)
		}
	}

	subject := models.Subject{ID: id, Name: name, Cases: []string{}}
	state.Subjects = append(state.Subjects, subject)
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventDataChanged})
	return &subject, nil
}

// AddCase creates a case under a subject, with a timestamp-based id and
// a derived title, and mirrors the full document remotely.
func (s *Store) AddCase(subjectID string, in CaseInput) (*models.Case, error) {
	s.mu.Lock()
	_, subject := s.findSubjectLocked(subjectID)
	if subject == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("subject %s: %w", subjectID, ErrNotFound)
	}

	newCase := &models.Case{
		ID:         fmt.Sprintf("case-%d", time.Now().UnixNano()),
		Actor:      in.Actor,
		Demandado:  in.Demandado,
		Title:      models.DeriveCaseTitle(in.Actor, in.Demandado),
		Expediente: in.Expediente,
		Juzgado:    in.Juzgado,
		Status:     models.CaseStatusNuevo,
		LastUpdate: today(),
		Images:     []models.Image{},
		Tasks:      []models.Task{},
	}
	s.tree.Cases[newCase.ID] = newCase
	subject.Cases = append(subject.Cases, newCase.ID)
	s.persistLocked()

	doc := remoteCaseDoc{Case: *newCase.Clone(), SubjectID: subjectID}
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventDataChanged})
	s.mirror("case create", func(ctx context.Context) error {
		return s.remote.Set(ctx, services.CollectionCases, doc.ID, doc)
	})

	return newCase.Clone(), nil
}

// UpdateCase shallow-merges fields into a case. The title is recomputed
// when either party changes. Remotely it issues a partial update, not a
// full overwrite.
func (s *Store) UpdateCase(caseID string, upd models.CaseUpdate) error {
	s.mu.Lock()
	c, ok := s.tree.Cases[caseID]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}

	fields := map[string]interface{}{}
	if upd.Actor != nil {
		c.Actor = *upd.Actor
		fields["actor"] = c.Actor
	}
	if upd.Demandado != nil {
		c.Demandado = *upd.Demandado
		fields["demandado"] = c.Demandado
	}
	if upd.Actor != nil || upd.Demandado != nil {
		c.Title = models.DeriveCaseTitle(c.Actor, c.Demandado)
		fields["title"] = c.Title
	}
	if upd.Expediente != nil {
		c.Expediente = *upd.Expediente
		fields["expediente"] = c.Expediente
	}
	if upd.Juzgado != nil {
		c.Juzgado = *upd.Juzgado
		fields["juzgado"] = c.Juzgado
	}
	if upd.Status != nil {
		c.Status = *upd.Status
		fields["status"] = c.Status
	}
	if upd.LastUpdate != nil {
		c.LastUpdate = *upd.LastUpdate
	} else {
		c.LastUpdate = today()
	}
	fields["lastUpdate"] = c.LastUpdate

	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventDataChanged})
	s.mirror("case update", func(ctx context.Context) error {
		return s.remote.Update(ctx, services.CollectionCases, caseID, fields)
	})
	return nil
}

// DeleteCase removes the case from the map and its id from the owning
// subject's list, atomically from the caller's perspective. A case
// already absent from every subject list is still deleted without error.
func (s *Store) DeleteCase(caseID string) error {
	s.mu.Lock()
	if _, ok := s.tree.Cases[caseID]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("case %s: %w", caseID, ErrNotFound)
	}

	delete(s.tree.Cases, caseID)
	for si := range s.tree.States {
		for sj := range s.tree.States[si].Subjects {
			subject := &s.tree.States[si].Subjects[sj]
			for i, id := range subject.Cases {
				if id == caseID {
					subject.Cases = append(subject.Cases[:i], subject.Cases[i+1:]...)
					break
				}
			}
		}
	}
	s.persistLocked()
	s.mu.Unlock()

	s.bus.Publish(Event{Type: EventDataChanged})
	s.mirror("case delete", func(ctx context.Context) error {
		return s.remote.Delete(ctx, services.CollectionCases, caseID)
	})
	return nil
}
