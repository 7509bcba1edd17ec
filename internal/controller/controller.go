package controller

import (
	"context"
	"errors"
	"strings"
	"sync"

	"tasklist/internal/clock"
	"tasklist/internal/logger"
	"tasklist/internal/manager"
	"tasklist/internal/models"
	"tasklist/internal/render"
	"tasklist/internal/validator"
)

const (
	MsgFixDataFirst  = "fix data first"
	MsgTaskAdded     = "task added"
	MsgTaskCompleted = "task completed"
	MsgTaskReopened  = "task reopened"
	MsgTaskDeleted   = "task deleted"
	MsgSaveFailed    = "could not save tasks"
	PromptDelete     = "delete this task?"
)

type Repository interface {
	AddTask(title, date string, priority models.Priority) (models.Task, error)
	ToggleTask(id int64) (bool, error)
	DeleteTask(id int64) error
	List() []models.Task
}

type Notifier interface {
	Notify(message string)
}

// Presenter is the UI side. The controller calls it; it never calls back
// into the repository.
type Presenter interface {
	ShowView(view render.View)
	ShowTitleError(msg string)
	ShowDateError(msg string)
	ShowFilter(active models.Filter)
	ClearTitle()
	Alert(msg string)
	AskConfirm(prompt string)
}

type Form struct {
	Title    string
	Date     string
	Priority string
}

type Controller struct {
	mu            sync.Mutex
	repo          Repository
	notifier      Notifier
	ui            Presenter
	clock         clock.Clock
	filter        models.Filter
	pendingDelete *int64
}

func New(repo Repository, notifier Notifier, ui Presenter, clk clock.Clock) *Controller {
	if clk == nil {
		clk = clock.System{}
	}
	return &Controller{
		repo:     repo,
		notifier: notifier,
		ui:       ui,
		clock:    clk,
		filter:   models.FilterAll,
	}
}

// Start draws the initial state.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ui.ShowFilter(c.filter)
	c.refresh()
}

func (c *Controller) Filter() models.Filter {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter
}

// View is the current projection under the active filter.
func (c *Controller) View() render.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return render.Render(c.repo.List(), c.filter, c.clock.Now())
}

// Submit validates the form and adds a task. Every failing check is shown
// before the submit is blocked.
func (c *Controller) Submit(form Form) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	dateText := strings.TrimSpace(form.Date)
	title := validator.ValidateTitle(form.Title)
	date := validator.ValidateDate(dateText, clock.Today(c.clock))
	prio := validator.ValidatePriority(form.Priority)

	c.ui.ShowTitleError(title.Message)
	c.ui.ShowDateError(date.Message)
	if !title.OK || !date.OK || !prio.OK {
		if !prio.OK {
			c.ui.Alert(prio.Message)
		}
		c.ui.Alert(MsgFixDataFirst)
		return false
	}

	priority, ok := models.ParsePriority(form.Priority)
	if !ok {
		priority = models.PriorityDaily
	}

	task, err := c.repo.AddTask(form.Title, dateText, priority)
	if err != nil {
		c.reportSave(err)
	} else {
		logger.Info(context.Background(), "task added", "id", task.ID, "date", task.Date, "priority", task.Priority)
	}

	c.ui.ClearTitle()
	c.refresh()
	c.notifier.Notify(MsgTaskAdded)
	return true
}

func (c *Controller) SelectFilter(f models.Filter) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.filter = f
	c.ui.ShowFilter(f)
	c.refresh()
}

func (c *Controller) Toggle(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	done, err := c.repo.ToggleTask(id)
	if errors.Is(err, manager.ErrTaskNotFound) {
		logger.Debug(context.Background(), "toggle of unknown task ignored", "id", id)
		return
	}
	c.reportSave(err)

	c.refresh()
	if done {
		c.notifier.Notify(MsgTaskCompleted)
	} else {
		c.notifier.Notify(MsgTaskReopened)
	}
}

// RequestDelete starts the delete protocol. Nothing changes until
// ConfirmDelete is called.
func (c *Controller) RequestDelete(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.pendingDelete = &id
	c.ui.AskConfirm(PromptDelete)
}

// PendingDelete reports the id awaiting confirmation, if any.
func (c *Controller) PendingDelete() (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pendingDelete == nil {
		return 0, false
	}
	return *c.pendingDelete, true
}

func (c *Controller) ConfirmDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pendingDelete == nil {
		return
	}
	id := *c.pendingDelete
	c.pendingDelete = nil

	err := c.repo.DeleteTask(id)
	if errors.Is(err, manager.ErrTaskNotFound) {
		logger.Debug(context.Background(), "delete of unknown task ignored", "id", id)
		return
	}
	c.reportSave(err)
	logger.Info(context.Background(), "task deleted", "id", id)

	c.refresh()
	c.notifier.Notify(MsgTaskDeleted)
}

func (c *Controller) CancelDelete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingDelete = nil
}

// TitleChanged validates the title as it is typed.
func (c *Controller) TitleChanged(text string) {
	c.ui.ShowTitleError(validator.ValidateTitle(text).Message)
}

// DateChanged validates the date as it is picked.
func (c *Controller) DateChanged(text string) {
	c.ui.ShowDateError(validator.ValidateDate(text, clock.Today(c.clock)).Message)
}

func (c *Controller) refresh() {
	c.ui.ShowView(render.Render(c.repo.List(), c.filter, c.clock.Now()))
}

func (c *Controller) reportSave(err error) {
	if err == nil {
		return
	}
	logger.Error(context.Background(), err, "persist task list")
	c.ui.Alert(MsgSaveFailed)
}
