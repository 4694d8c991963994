package models

import "time"

// Signature records who performed an action and when
type Signature struct {
	Name string    `json:"name"`
	UID  string    `json:"uid"`
	At   time.Time `json:"at"`
}

// Task is a deadline/todo item attached to a case.
// Invariant: CompletedBy is present iff Completed is true.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Date        string     `json:"date"`
	Urgent      bool       `json:"urgent"`
	Completed   bool       `json:"completed"`
	CreatedBy   Signature  `json:"createdBy"`
	CompletedBy *Signature `json:"completedBy,omitempty"`
}

// TaskUpdate carries a partial update for UpdateTask
type TaskUpdate struct {
	Title     *string    `json:"title,omitempty"`
	Date      *string    `json:"date,omitempty"`
	Urgent    *bool      `json:"urgent,omitempty"`
	Completed *bool      `json:"completed,omitempty"`
	By        *Signature `json:"by,omitempty"`
}

// DashboardTask is a free-floating task not attached to any case, used
// when an imported or seeded task cannot be matched to an existing case.
type DashboardTask struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Date   string `json:"date"`
	Urgent bool   `json:"urgent"`
}
