package models

import "encoding/json"

// DocumentTree is the full in-memory document tree owned by the domain
// store. The local store persists it wholesale; the remote store mirrors
// only Cases, tasks derived from cases, and Promotions.
type DocumentTree struct {
	States         []State          `json:"states"`
	Cases          map[string]*Case `json:"cases"`
	Promotions     []Promotion      `json:"promotions"`
	GeneralEvents  []GeneralEvent   `json:"generalEvents"`
	DashboardTasks []DashboardTask  `json:"dashboardTasks"`
}

// NewDocumentTree builds the default tree used when nothing is persisted:
// the fixed jurisdiction skeleton and empty collections.
func NewDocumentTree() *DocumentTree {
	return &DocumentTree{
		States:         DefaultStates(),
		Cases:          map[string]*Case{},
		Promotions:     []Promotion{},
		GeneralEvents:  []GeneralEvent{},
		DashboardTasks: []DashboardTask{},
	}
}

// Normalize applies schema defaults after loading a persisted tree so the
// rest of the code never has to nil-check collections.
func (t *DocumentTree) Normalize() {
	if t.States == nil {
		t.States = DefaultStates()
	}
	if t.Cases == nil {
		t.Cases = map[string]*Case{}
	}
	if t.Promotions == nil {
		t.Promotions = []Promotion{}
	}
	if t.GeneralEvents == nil {
		t.GeneralEvents = []GeneralEvent{}
	}
	if t.DashboardTasks == nil {
		t.DashboardTasks = []DashboardTask{}
	}
	for si := range t.States {
		for sj := range t.States[si].Subjects {
			if t.States[si].Subjects[sj].Cases == nil {
				t.States[si].Subjects[sj].Cases = []string{}
			}
		}
	}
	for _, c := range t.Cases {
		if c.Images == nil {
			c.Images = []Image{}
		}
		if c.Tasks == nil {
			c.Tasks = []Task{}
		}
	}
}

// Clone returns a deep copy of the tree via a JSON round-trip
func (t *DocumentTree) Clone() (*DocumentTree, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var copy DocumentTree
	if err := json.Unmarshal(data, &copy); err != nil {
		return nil, err
	}
	copy.Normalize()
	return &copy, nil
}
