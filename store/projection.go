package store

import (
	"fmt"
	"sort"
	"time"

	"despacho_app_go/models"
)

// ProjectEvents derives the flat calendar-event list from a document
// tree. It is pure and recomputed on every call; there is no cached
// index to invalidate. Sorting and filtering are the caller's concern.
func ProjectEvents(tree *models.DocumentTree) []models.CalendarEvent {
	events := []models.CalendarEvent{}

	for _, task := range tree.DashboardTasks {
		events = append(events, models.CalendarEvent{
			Type:   models.EventTypeTask,
			Date:   task.Date,
			Title:  task.Title,
			Urgent: task.Urgent,
			TaskID: task.ID,
		})
	}

	for _, generalEvent := range tree.GeneralEvents {
		ev := models.CalendarEvent{
			Type:        models.EventTypeTask,
			Date:        generalEvent.Date,
			Title:       generalEvent.Title,
			Description: generalEvent.Description,
			TaskID:      generalEvent.ID,
		}
		if generalEvent.CaseID != nil {
			ev.CaseID = *generalEvent.CaseID
		}
		events = append(events, ev)
	}

	caseIDs := make([]string, 0, len(tree.Cases))
	for id := range tree.Cases {
		caseIDs = append(caseIDs, id)
	}
	sort.Strings(caseIDs)

	for _, caseID := range caseIDs {
		c := tree.Cases[caseID]

		for _, task := range c.Tasks {
			events = append(events, models.CalendarEvent{
				Type:        models.EventTypeTask,
				Date:        task.Date,
				Title:       task.Title,
				Description: c.Title,
				Urgent:      task.Urgent,
				Completed:   task.Completed,
				CompletedBy: task.CompletedBy,
				CaseID:      c.ID,
				TaskID:      task.ID,
			})
		}

		// Deadlines are always urgent and never grouped
		for _, img := range c.Images {
			if img.Deadline == nil {
				continue
			}
			events = append(events, models.CalendarEvent{
				Type:        models.EventTypeDeadline,
				Date:        *img.Deadline,
				Title:       fmt.Sprintf("Vencimiento: %s", c.Title),
				Description: img.NextAction,
				Urgent:      true,
				CaseID:      c.ID,
				ImageID:     img.ID,
			})
		}

		events = append(events, projectAttachments(c)...)
	}

	return events
}

// projectAttachments groups a case's images by date (falling back to the
// case's lastUpdate): a single image on a date gets a detailed event,
// several get one summarizing event linked to the case.
func projectAttachments(c *models.Case) []models.CalendarEvent {
	groups := map[string][]models.Image{}
	dateOrder := []string{}
	for _, img := range c.Images {
		date := img.Date
		if date == "" {
			date = c.LastUpdate
		}
		if _, seen := groups[date]; !seen {
			dateOrder = append(dateOrder, date)
		}
		groups[date] = append(groups[date], img)
	}

	events := make([]models.CalendarEvent, 0, len(dateOrder))
	for _, date := range dateOrder {
		imgs := groups[date]
		if len(imgs) == 1 {
			img := imgs[0]
			events = append(events, models.CalendarEvent{
				Type:        models.EventTypeAttachment,
				Date:        date,
				Title:       fmt.Sprintf("Nuevo Documento: %s", img.Type),
				Description: img.Summary,
				CaseID:      c.ID,
				ImageID:     img.ID,
				Count:       1,
			})
			continue
		}
		events = append(events, models.CalendarEvent{
			Type:        models.EventTypeAttachment,
			Date:        date,
			Title:       fmt.Sprintf("%d Nuevos Documentos", len(imgs)),
			Description: c.Title,
			CaseID:      c.ID,
			Count:       len(imgs),
		})
	}
	return events
}

// AllEvents projects the current tree
func (s *Store) AllEvents() []models.CalendarEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ProjectEvents(s.tree)
}

// FilterOn keeps events falling on an exact date (calendar day view)
func FilterOn(events []models.CalendarEvent, date string) []models.CalendarEvent {
	out := []models.CalendarEvent{}
	for _, ev := range events {
		if ev.Date == date {
			out = append(out, ev)
		}
	}
	return out
}

// FilterRange keeps events within [from, from+days), inclusive of the
// starting day. Events with unparseable dates are dropped.
func FilterRange(events []models.CalendarEvent, from time.Time, days int) []models.CalendarEvent {
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	end := start.AddDate(0, 0, days)

	out := []models.CalendarEvent{}
	for _, ev := range events {
		d, err := time.ParseInLocation("2006-01-02", ev.Date, from.Location())
		if err != nil {
			continue
		}
		if !d.Before(start) && d.Before(end) {
			out = append(out, ev)
		}
	}
	return out
}

// UrgentTerms keeps urgent tasks and all deadlines, sorted ascending by
// date (the urgent-terms widget).
func UrgentTerms(events []models.CalendarEvent) []models.CalendarEvent {
	out := []models.CalendarEvent{}
	for _, ev := range events {
		if ev.Urgent || ev.Type == models.EventTypeDeadline {
			out = append(out, ev)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
