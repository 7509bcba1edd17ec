package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"tasklist/internal/models"
	"tasklist/internal/notify"
	"tasklist/internal/render"
)

// Screen holds what the controller last asked to show. It is only touched
// from the bubbletea event loop, so it needs no locking.
type Screen struct {
	view         render.View
	filter       models.Filter
	titleErr     string
	dateErr      string
	alert        string
	confirm      string
	titleCleared bool

	program atomic.Pointer[tea.Program]
}

func NewScreen() *Screen {
	return &Screen{filter: models.FilterAll}
}

func (s *Screen) ShowView(v render.View)     { s.view = v }
func (s *Screen) ShowTitleError(msg string)  { s.titleErr = msg }
func (s *Screen) ShowDateError(msg string)   { s.dateErr = msg }
func (s *Screen) ShowFilter(f models.Filter) { s.filter = f }
func (s *Screen) ClearTitle()                { s.titleCleared = true }
func (s *Screen) Alert(msg string)           { s.alert = msg }
func (s *Screen) AskConfirm(prompt string)   { s.confirm = prompt }

// Sink returns the notification sink for this screen. Notifications are
// drawn from notify.Service.Active on every frame, so Show has nothing to
// do; Dismiss wakes the event loop to redraw.
func (s *Screen) Sink() notify.Sink {
	return sink{s}
}

type dismissedMsg struct{}

type sink struct{ s *Screen }

func (sink) Show(notify.Notification) {}

func (k sink) Dismiss(notify.Notification) {
	if p := k.s.program.Load(); p != nil {
		p.Send(dismissedMsg{})
	}
}
