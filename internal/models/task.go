package models

import (
	"errors"
	"strings"
)

// DateLayout is the calendar date format used for Task.Date.
const DateLayout = "2006-01-02"

type Priority string

const (
	PriorityImportant Priority = "important"
	PriorityDaily     Priority = "daily"
)

// ParsePriority accepts the two known priorities, case-insensitive.
func ParsePriority(s string) (Priority, bool) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityImportant:
		return PriorityImportant, true
	case PriorityDaily:
		return PriorityDaily, true
	}
	return "", false
}

// Label is the display name of the priority. Unknown values read as "Daily".
func (p Priority) Label() string {
	if p == PriorityImportant {
		return "Important"
	}
	return "Daily"
}

type Task struct {
	ID       int64    `json:"id"`
	Title    string   `json:"title"`
	Date     string   `json:"date"`
	Priority Priority `json:"priority"`
	Done     bool     `json:"done"`
}

type Filter string

const (
	FilterAll  Filter = "all"
	FilterTodo Filter = "todo"
	FilterDone Filter = "done"
)

var ErrUnknownFilter = errors.New("unknown filter")

func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterTodo, FilterDone:
		return f, nil
	}
	return "", ErrUnknownFilter
}

// Match reports whether a task belongs to the filtered subset.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterTodo:
		return !t.Done
	case FilterDone:
		return t.Done
	}
	return true
}
