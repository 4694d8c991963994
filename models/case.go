package models

import "fmt"

// Case status constants
const (
	CaseStatusNuevo     = "Nuevo"
	CaseStatusEnTramite = "En Trámite"
	CaseStatusSentencia = "Sentencia"
	CaseStatusArchivado = "Archivado"
)

// Case represents a legal matter. Cases live in the document tree's case
// map keyed by ID; each case belongs to exactly one subject, which holds
// the ID in its Cases list.
type Case struct {
	ID         string  `json:"id"`
	Actor      string  `json:"actor"`
	Demandado  string  `json:"demandado"`
	Title      string  `json:"title"`
	Expediente string  `json:"expediente"`
	Juzgado    string  `json:"juzgado"`
	Status     string  `json:"status"`
	LastUpdate string  `json:"lastUpdate"`
	Images     []Image `json:"images"`
	Tasks      []Task  `json:"tasks"`
}

// DeriveCaseTitle builds the display title from the parties
func DeriveCaseTitle(actor, demandado string) string {
	return fmt.Sprintf("%s vs %s", actor, demandado)
}

// CaseUpdate carries a shallow field merge for UpdateCase. Nil pointers
// leave the corresponding field untouched.
type CaseUpdate struct {
	Actor      *string `json:"actor,omitempty"`
	Demandado  *string `json:"demandado,omitempty"`
	Expediente *string `json:"expediente,omitempty"`
	Juzgado    *string `json:"juzgado,omitempty"`
	Status     *string `json:"status,omitempty"`
	LastUpdate *string `json:"lastUpdate,omitempty"`
}

// IsValidCaseStatus checks if the status is a known lifecycle value
func IsValidCaseStatus(status string) bool {
	switch status {
	case CaseStatusNuevo, CaseStatusEnTramite, CaseStatusSentencia, CaseStatusArchivado:
		return true
	}
	return false
}

// FindImage returns the image with the given id, or nil
func (c *Case) FindImage(imageID string) *Image {
	for i := range c.Images {
		if c.Images[i].ID == imageID {
			return &c.Images[i]
		}
	}
	return nil
}

// FindTask returns the task with the given id, or nil
func (c *Case) FindTask(taskID string) *Task {
	for i := range c.Tasks {
		if c.Tasks[i].ID == taskID {
			return &c.Tasks[i]
		}
	}
	return nil
}
