package models

import "strings"

// State represents a federal entity grouping legal subjects
type State struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Subjects []Subject `json:"subjects"`
}

// Subject represents a legal subject area within a state.
// Cases holds ordered foreign keys into the case map, not inline documents.
type Subject struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Cases []string `json:"cases"`
}

// SubjectID derives the identifier for a new subject from its state and name.
// Format: {stateID}-{first 3 lowercased chars of name}
// Example: cdmx-fam for "Familiar" under "cdmx"
func SubjectID(stateID, name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	if len(slug) > 3 {
		slug = slug[:3]
	}
	return stateID + "-" + slug
}

// DefaultStates returns the fixed jurisdiction skeleton used when no
// persisted tree exists yet. The jurisdiction tree is local-only and is
// never mirrored to the remote store.
func DefaultStates() []State {
	subjectNames := []struct {
		Slug string
		Name string
	}{
		{"fam", "Derecho Familiar"},
		{"civ", "Derecho Civil"},
		{"pen", "Derecho Penal"},
		{"lab", "Derecho Laboral"},
		{"mer", "Derecho Mercantil"},
	}

	states := []struct {
		ID   string
		Name string
	}{
		{"cdmx", "Ciudad de México"},
		{"edomex", "Estado de México"},
		{"jal", "Jalisco"},
	}

	result := make([]State, 0, len(states))
	for _, s := range states {
		subjects := make([]Subject, 0, len(subjectNames))
		for _, sub := range subjectNames {
			subjects = append(subjects, Subject{
				ID:    s.ID + "-" + sub.Slug,
				Name:  sub.Name,
				Cases: []string{},
			})
		}
		result = append(result, State{ID: s.ID, Name: s.Name, Subjects: subjects})
	}
	return result
}
