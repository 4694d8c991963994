package models

// GeneralEvent is a standalone calendar entry, auto-created when a
// promotion's analysis detects a filing date. CaseID stays nil until the
// event is manually associated with a case.
type GeneralEvent struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
	CaseID      *string `json:"caseId"`
}

// Calendar event types emitted by the projection
const (
	EventTypeTask       = "task"
	EventTypeDeadline   = "deadline"
	EventTypeAttachment = "attachment"
)

// CalendarEvent is a derived, flat calendar entry projected from the
// document tree. It is never stored; the projection recomputes the full
// list on demand.
type CalendarEvent struct {
	Type        string     `json:"type"`
	Date        string     `json:"date"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Urgent      bool       `json:"urgent"`
	Completed   bool       `json:"completed"`
	CompletedBy *Signature `json:"completedBy,omitempty"`
	CaseID      string     `json:"caseId,omitempty"`
	TaskID      string     `json:"taskId,omitempty"`
	ImageID     string     `json:"imageId,omitempty"`
	Count       int        `json:"count,omitempty"`
}
