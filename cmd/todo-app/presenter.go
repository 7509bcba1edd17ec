package main

import (
	"fmt"
	"io"

	"tasklist/internal/models"
	"tasklist/internal/render"
)

// cliPresenter keeps the latest view for the list command and prints
// errors as they arrive.
type cliPresenter struct {
	out    io.Writer
	errOut io.Writer
	view   render.View
	prompt string
}

func (p *cliPresenter) ShowView(v render.View)    { p.view = v }
func (p *cliPresenter) ShowFilter(models.Filter)  {}
func (p *cliPresenter) ClearTitle()               {}
func (p *cliPresenter) AskConfirm(prompt string)  { p.prompt = prompt }
func (p *cliPresenter) Alert(msg string)          { fmt.Fprintln(p.errOut, "Error:", msg) }
func (p *cliPresenter) ShowTitleError(msg string) { p.fieldError("title", msg) }
func (p *cliPresenter) ShowDateError(msg string)  { p.fieldError("date", msg) }

func (p *cliPresenter) fieldError(field, msg string) {
	if msg != "" {
		fmt.Fprintf(p.errOut, "  --%s: %s\n", field, msg)
	}
}

func (p *cliPresenter) printView() {
	if p.view.Empty {
		fmt.Fprintln(p.out, "No tasks found")
		return
	}
	for _, r := range p.view.Rows {
		status := "Todo"
		if r.Done {
			status = "Done"
		}
		due := ""
		if r.DueIn != "" {
			due = ", " + r.DueIn
		}
		fmt.Fprintf(p.out, "%d: %s [%s] %s%s (%s)\n", r.ID, r.Title, status, r.DateLabel, due, r.PriorityLabel)
	}
}
