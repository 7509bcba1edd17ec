package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"tasklist/internal/clock"
	"tasklist/internal/logger"
	"tasklist/internal/models"
)

var ErrTaskNotFound = errors.New("task not found")

var (
	addTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todoapp_tasks_added_total",
			Help: "Total number of AddTask operations",
		},
		[]string{"status"},
	)

	toggleTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todoapp_tasks_toggled_total",
			Help: "Total number of ToggleTask operations by resulting state",
		},
		[]string{"state"},
	)

	deleteTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todoapp_tasks_deleted_total",
			Help: "Total number of DeleteTask operations",
		},
		[]string{"status"},
	)

	taskTitleLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "todoapp_task_title_length_bytes",
			Help:    "Length distribution of task titles",
			Buckets: []float64{10, 25, 50, 100, 250},
		},
	)

	saveDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "todoapp_store_save_duration_seconds",
			Help:    "Duration of persisting the task list in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Store is where the task collection is persisted.
type Store interface {
	Load() []models.Task
	Save(tasks []models.Task) error
}

// TaskManager owns the task collection. Every mutation is written through
// to the Store.
type TaskManager struct {
	mu     sync.Mutex
	tasks  []models.Task
	lastID int64
	store  Store
	clock  clock.Clock
}

func NewTaskManager(store Store, clk clock.Clock) *TaskManager {
	if clk == nil {
		clk = clock.System{}
	}
	tm := &TaskManager{store: store, clock: clk}
	if store != nil {
		tm.tasks = store.Load()
	}
	for _, t := range tm.tasks {
		if t.ID > tm.lastID {
			tm.lastID = t.ID
		}
	}
	logger.Debug(context.Background(), "task list loaded", "count", len(tm.tasks))
	return tm
}

// nextID is derived from the clock in milliseconds and never repeats.
func (tm *TaskManager) nextID() int64 {
	id := tm.clock.Now().UnixMilli()
	if id <= tm.lastID {
		id = tm.lastID + 1
	}
	tm.lastID = id
	return id
}

// AddTask appends a new open task. Input is expected to be validated
// already; the returned error only reports a failed save.
func (tm *TaskManager) AddTask(title, date string, priority models.Priority) (models.Task, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	task := models.Task{
		ID:       tm.nextID(),
		Title:    strings.TrimSpace(title),
		Date:     date,
		Priority: priority,
	}
	tm.tasks = append(tm.tasks, task)
	taskTitleLength.Observe(float64(len(task.Title)))

	if err := tm.save(); err != nil {
		addTaskCount.WithLabelValues("error").Inc()
		return task, err
	}
	addTaskCount.WithLabelValues("success").Inc()
	return task, nil
}

// ToggleTask flips the done flag and returns the new value.
func (tm *TaskManager) ToggleTask(id int64) (bool, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for i := range tm.tasks {
		if tm.tasks[i].ID != id {
			continue
		}
		tm.tasks[i].Done = !tm.tasks[i].Done
		done := tm.tasks[i].Done

		if done {
			toggleTaskCount.WithLabelValues("done").Inc()
		} else {
			toggleTaskCount.WithLabelValues("reopened").Inc()
		}
		return done, tm.save()
	}
	return false, ErrTaskNotFound
}

func (tm *TaskManager) DeleteTask(id int64) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for i := range tm.tasks {
		if tm.tasks[i].ID == id {
			tm.tasks = append(tm.tasks[:i], tm.tasks[i+1:]...)
			deleteTaskCount.WithLabelValues("success").Inc()
			return tm.save()
		}
	}
	deleteTaskCount.WithLabelValues("not_found").Inc()
	return ErrTaskNotFound
}

func (tm *TaskManager) GetTask(id int64) (models.Task, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	for _, task := range tm.tasks {
		if task.ID == id {
			return task, nil
		}
	}
	return models.Task{}, ErrTaskNotFound
}

// List returns a copy of the collection in insertion order.
func (tm *TaskManager) List() []models.Task {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	out := make([]models.Task, len(tm.tasks))
	copy(out, tm.tasks)
	return out
}

func (tm *TaskManager) save() error {
	if tm.store == nil {
		return nil
	}
	startTime := time.Now()
	defer func() {
		saveDuration.Observe(time.Since(startTime).Seconds())
	}()

	snapshot := make([]models.Task, len(tm.tasks))
	copy(snapshot, tm.tasks)
	if err := tm.store.Save(snapshot); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}
