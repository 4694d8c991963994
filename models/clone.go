package models

// Deep-copy helpers. Store queries hand out copies so callers can never
// mutate the owned tree behind the store's back.

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a deep copy of the analysis
func (a *AIAnalysis) Clone() *AIAnalysis {
	if a == nil {
		return nil
	}
	copy := *a
	copy.DeadlineDate = cloneStringPtr(a.DeadlineDate)
	copy.FilingDate = cloneStringPtr(a.FilingDate)
	return &copy
}

// Clone returns a deep copy of the image
func (img Image) Clone() Image {
	img.Deadline = cloneStringPtr(img.Deadline)
	img.AIAnalysis = img.AIAnalysis.Clone()
	return img
}

// Clone returns a deep copy of the task
func (t Task) Clone() Task {
	if t.CompletedBy != nil {
		by := *t.CompletedBy
		t.CompletedBy = &by
	}
	return t
}

// Clone returns a deep copy of the promotion
func (p Promotion) Clone() Promotion {
	p.AIAnalysis = p.AIAnalysis.Clone()
	return p
}

// Clone returns a deep copy of the case
func (c *Case) Clone() *Case {
	if c == nil {
		return nil
	}
	copy := *c
	copy.Images = make([]Image, 0, len(c.Images))
	for _, img := range c.Images {
		copy.Images = append(copy.Images, img.Clone())
	}
	copy.Tasks = make([]Task, 0, len(c.Tasks))
	for _, t := range c.Tasks {
		copy.Tasks = append(copy.Tasks, t.Clone())
	}
	return &copy
}

// Clone returns a deep copy of the subject
func (s Subject) Clone() Subject {
	s.Cases = append([]string{}, s.Cases...)
	return s
}

// Clone returns a deep copy of the state
func (st State) Clone() State {
	subjects := make([]Subject, 0, len(st.Subjects))
	for _, s := range st.Subjects {
		subjects = append(subjects, s.Clone())
	}
	st.Subjects = subjects
	return st
}

// Clone returns a deep copy of the general event
func (e GeneralEvent) Clone() GeneralEvent {
	e.CaseID = cloneStringPtr(e.CaseID)
	return e
}
