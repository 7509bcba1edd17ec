package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tasklist/internal/clock"
	"tasklist/internal/controller"
	"tasklist/internal/models"
	"tasklist/internal/notify"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeConfirm
)

const (
	fieldTitle = iota
	fieldDate
	fieldPriority
	fieldCount
)

type Model struct {
	ctl    *controller.Controller
	notes  *notify.Service
	screen *Screen

	mode   mode
	cursor int
	inputs [fieldCount]textinput.Model
	focus  int
}

func NewModel(ctl *controller.Controller, notes *notify.Service, screen *Screen, clk clock.Clock) Model {
	m := Model{ctl: ctl, notes: notes, screen: screen}

	placeholders := [fieldCount]string{"Task title", models.DateLayout, "important | daily"}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 256
		ti.Width = 40
		m.inputs[i] = ti
	}
	m.inputs[fieldDate].SetValue(clock.Today(clk))
	m.inputs[fieldPriority].SetValue(string(models.PriorityDaily))
	return m
}

// Run starts the controller and blocks until the user quits.
func Run(ctl *controller.Controller, notes *notify.Service, screen *Screen, clk clock.Clock) error {
	ctl.Start()

	p := tea.NewProgram(NewModel(ctl, notes, screen, clk))
	screen.program.Store(p)
	_, err := p.Run()
	screen.program.Store(nil)

	notes.Clear()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeAdd:
			return m.updateAddMode(msg)
		case modeConfirm:
			return m.updateConfirmMode(msg.String())
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		for i := range m.inputs {
			m.inputs[i].Width = msg.Width - 14
		}
	case dismissedMsg:
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	rows := m.screen.view.Rows
	switch key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "down", "j":
		m.cursor = clampCursor(m.cursor+1, len(rows))
	case "up", "k":
		m.cursor = clampCursor(m.cursor-1, len(rows))
	case "1":
		m.ctl.SelectFilter(models.FilterAll)
	case "2":
		m.ctl.SelectFilter(models.FilterTodo)
	case "3":
		m.ctl.SelectFilter(models.FilterDone)
	case " ":
		if len(rows) == 0 {
			return m, nil
		}
		m.ctl.Toggle(rows[m.cursor].ID)
	case "d":
		if len(rows) == 0 {
			return m, nil
		}
		m.ctl.RequestDelete(rows[m.cursor].ID)
		if m.screen.confirm != "" {
			m.mode = modeConfirm
		}
	case "a":
		m.mode = modeAdd
		m.screen.alert = ""
		cmd := m.setFocus(fieldTitle)
		return m, cmd
	}
	m.cursor = clampCursor(m.cursor, len(m.screen.view.Rows))
	return m, nil
}

func (m Model) updateConfirmMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		m.ctl.ConfirmDelete()
	case "n", "N", "esc":
		m.ctl.CancelDelete()
	case "ctrl+c":
		m.ctl.CancelDelete()
		return m, tea.Quit
	default:
		return m, nil
	}
	m.screen.confirm = ""
	m.mode = modeList
	m.cursor = clampCursor(m.cursor, len(m.screen.view.Rows))
	return m, nil
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.leaveForm()
		return m, nil
	case "tab", "down":
		cmd := m.setFocus((m.focus + 1) % fieldCount)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, cmd
	case "enter":
		ok := m.ctl.Submit(controller.Form{
			Title:    m.inputs[fieldTitle].Value(),
			Date:     m.inputs[fieldDate].Value(),
			Priority: m.inputs[fieldPriority].Value(),
		})
		if m.screen.titleCleared {
			m.inputs[fieldTitle].SetValue("")
			m.screen.titleCleared = false
		}
		if ok {
			m.leaveForm()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	switch m.focus {
	case fieldTitle:
		m.ctl.TitleChanged(m.inputs[fieldTitle].Value())
	case fieldDate:
		m.ctl.DateChanged(m.inputs[fieldDate].Value())
	}
	return m, cmd
}

func (m *Model) setFocus(field int) tea.Cmd {
	m.focus = field
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == field {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) leaveForm() {
	for i := range m.inputs {
		m.inputs[i].Blur()
	}
	m.screen.titleErr = ""
	m.screen.dateErr = ""
	m.mode = modeList
	m.cursor = clampCursor(m.cursor, len(m.screen.view.Rows))
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString("Tasks  ")
	b.WriteString(renderFilters(m.screen.filter))
	b.WriteString("\n\n")

	if m.screen.view.Empty {
		b.WriteString("No tasks here. Press 'a' to add one.\n")
	}
	for i, r := range m.screen.view.Rows {
		cursor := "  "
		if i == m.cursor && m.mode == modeList {
			cursor = "> "
		}
		due := ""
		if r.DueIn != "" {
			due = " (" + r.DueIn + ")"
		}
		fmt.Fprintf(&b, "%s[%s] %-30s %6s%s  %s  %s\n",
			cursor, r.ToggleLabel, r.Title, r.DateLabel, due, r.PriorityLabel, r.DeleteLabel)
	}

	if m.mode == modeAdd {
		b.WriteString("\n")
		b.WriteString(m.renderForm())
	}

	b.WriteString("\n")
	for _, n := range m.notes.Active() {
		b.WriteString("» " + n.Message + "\n")
	}
	if m.screen.alert != "" {
		b.WriteString("! " + m.screen.alert + "\n")
	}
	if m.mode == modeConfirm {
		b.WriteString(m.screen.confirm + " (y/n)\n")
	}

	b.WriteString("\n")
	b.WriteString(helpLine(m.mode))
	return b.String()
}

func (m Model) renderForm() string {
	var b strings.Builder
	labels := [fieldCount]string{"Title", "Date", "Priority"}
	errs := [fieldCount]string{m.screen.titleErr, m.screen.dateErr, ""}
	for i := range m.inputs {
		fmt.Fprintf(&b, "%-9s %s\n", labels[i], m.inputs[i].View())
		if errs[i] != "" {
			fmt.Fprintf(&b, "%-9s ! %s\n", "", errs[i])
		}
	}
	return b.String()
}

func renderFilters(active models.Filter) string {
	names := []struct {
		key    string
		filter models.Filter
		label  string
	}{
		{"1", models.FilterAll, "All"},
		{"2", models.FilterTodo, "Todo"},
		{"3", models.FilterDone, "Done"},
	}
	parts := make([]string, 0, len(names))
	for _, n := range names {
		label := n.key + " " + n.label
		if n.filter == active {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

func helpLine(md mode) string {
	switch md {
	case modeAdd:
		return "tab: next field • enter: add • esc: back"
	case modeConfirm:
		return "y: delete • n: keep"
	}
	return "a: add • space: toggle • d: delete • 1/2/3: filter • q: quit"
}

func clampCursor(cursor, length int) int {
	if length == 0 || cursor < 0 {
		return 0
	}
	if cursor >= length {
		return length - 1
	}
	return cursor
}
