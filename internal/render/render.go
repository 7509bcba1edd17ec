package render

import (
	"cmp"
	"slices"
	"time"

	"github.com/dustin/go-humanize"

	"tasklist/internal/models"
)

const (
	ToggleDoneLabel   = "✓"
	ToggleReopenLabel = "↩"
	DeleteLabel       = "×"
)

// Row is one display-ready task.
type Row struct {
	ID            int64
	Title         string
	Date          string
	DateLabel     string
	DueIn         string
	Priority      models.Priority
	PriorityLabel string
	Done          bool
	ToggleLabel   string
	DeleteLabel   string
}

// View is what a presenter draws. Empty means the empty state is shown
// instead of a list.
type View struct {
	Filter models.Filter
	Empty  bool
	Rows   []Row
}

// ComputeView selects the tasks matching filter and orders them open first,
// then by date. Ties keep their original relative order.
func ComputeView(tasks []models.Task, filter models.Filter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter.Match(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b models.Task) int {
		if a.Done != b.Done {
			if a.Done {
				return 1
			}
			return -1
		}
		return cmp.Compare(a.Date, b.Date)
	})
	return out
}

func Render(tasks []models.Task, filter models.Filter, today time.Time) View {
	selected := ComputeView(tasks, filter)
	view := View{
		Filter: filter,
		Empty:  len(selected) == 0,
		Rows:   make([]Row, 0, len(selected)),
	}
	for _, t := range selected {
		view.Rows = append(view.Rows, newRow(t, today))
	}
	return view
}

func newRow(t models.Task, today time.Time) Row {
	row := Row{
		ID:            t.ID,
		Title:         t.Title,
		Date:          t.Date,
		DateLabel:     t.Date,
		Priority:      t.Priority,
		PriorityLabel: t.Priority.Label(),
		Done:          t.Done,
		ToggleLabel:   ToggleDoneLabel,
		DeleteLabel:   DeleteLabel,
	}
	if t.Done {
		row.ToggleLabel = ToggleReopenLabel
	}
	if due, err := time.ParseInLocation(models.DateLayout, t.Date, today.Location()); err == nil {
		row.DateLabel = due.Format("2 Jan")
		row.DueIn = dueIn(due, today)
	}
	return row
}

// dueIn describes the distance from today to due in whole days.
func dueIn(due, today time.Time) string {
	y, m, d := today.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, today.Location())
	if due.Equal(midnight) {
		return "today"
	}
	return humanize.RelTime(due, midnight, "ago", "from now")
}
