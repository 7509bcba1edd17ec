package manager

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"tasklist/internal/clock"
	"tasklist/internal/models"
	"tasklist/internal/storage"
)

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.Local)

type failingStore struct {
	tasks []models.Task
}

func (s *failingStore) Load() []models.Task {
	return s.tasks
}

func (s *failingStore) Save([]models.Task) error {
	return errors.New("disk full")
}

func newManager(t *testing.T) (*TaskManager, *storage.Store) {
	t.Helper()
	st := storage.NewStore(storage.NewMemoryKV(), storage.DefaultSlot)
	return NewTaskManager(st, clock.NewFixed(testNow)), st
}

func TestAddTask(t *testing.T) {
	tm, st := newManager(t)

	task, err := tm.AddTask("  Buy milk ", "2026-10-20", models.PriorityDaily)
	if err != nil {
		t.Fatalf("AddTask() err=%v, want nil", err)
	}
	if task.ID != testNow.UnixMilli() {
		t.Errorf("ID=%d, want %d", task.ID, testNow.UnixMilli())
	}
	if task.Title != "Buy milk" || task.Done {
		t.Errorf("unexpected task: %+v", task)
	}

	if got := tm.List(); len(got) != 1 || got[0] != task {
		t.Errorf("List()=%+v, want [%+v]", got, task)
	}
	if persisted := st.Load(); len(persisted) != 1 || persisted[0] != task {
		t.Errorf("persisted=%+v, want [%+v]", persisted, task)
	}
}

func TestAddTask_UniqueIDsWithStalledClock(t *testing.T) {
	tm, _ := newManager(t)

	const n = 50
	seen := make(map[int64]bool)
	for i := 0; i < n; i++ {
		task, err := tm.AddTask("t", "2026-10-20", models.PriorityDaily)
		if err != nil {
			t.Fatalf("AddTask() err=%v", err)
		}
		if seen[task.ID] {
			t.Fatalf("duplicate id %d", task.ID)
		}
		seen[task.ID] = true
	}
	if got := len(tm.List()); got != n {
		t.Fatalf("len(List())=%d, want %d", got, n)
	}
}

func TestNewTaskManager_ContinuesAfterLoadedIDs(t *testing.T) {
	future := testNow.Add(time.Hour).UnixMilli()
	st := storage.NewStore(storage.NewMemoryKV(), storage.DefaultSlot)
	_ = st.Save([]models.Task{{ID: future, Title: "from the future", Date: "2026-10-20", Priority: models.PriorityDaily}})

	tm := NewTaskManager(st, clock.NewFixed(testNow))
	task, _ := tm.AddTask("next", "2026-10-20", models.PriorityDaily)
	if task.ID <= future {
		t.Fatalf("ID=%d, want > %d", task.ID, future)
	}
}

func TestToggleTask_Involution(t *testing.T) {
	tm, st := newManager(t)
	task, _ := tm.AddTask("Write report", "2026-10-20", models.PriorityImportant)

	done, err := tm.ToggleTask(task.ID)
	if err != nil || !done {
		t.Fatalf("first ToggleTask()=(%v,%v), want (true,nil)", done, err)
	}
	if !st.Load()[0].Done {
		t.Fatal("toggle was not persisted")
	}

	done, err = tm.ToggleTask(task.ID)
	if err != nil || done {
		t.Fatalf("second ToggleTask()=(%v,%v), want (false,nil)", done, err)
	}
	if got, _ := tm.GetTask(task.ID); got.Done != task.Done {
		t.Fatalf("Done=%v after two toggles, want %v", got.Done, task.Done)
	}
}

func TestToggleTask_NotFound(t *testing.T) {
	tm, _ := newManager(t)

	if _, err := tm.ToggleTask(123); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("ToggleTask() err=%v, want %v", err, ErrTaskNotFound)
	}
}

func TestDeleteTask(t *testing.T) {
	tm, st := newManager(t)
	keep, _ := tm.AddTask("keep", "2026-10-20", models.PriorityDaily)
	drop, _ := tm.AddTask("drop", "2026-10-21", models.PriorityDaily)

	if err := tm.DeleteTask(drop.ID); err != nil {
		t.Fatalf("DeleteTask() err=%v, want nil", err)
	}
	if got := tm.List(); len(got) != 1 || got[0].ID != keep.ID {
		t.Fatalf("List()=%+v, want only %d", got, keep.ID)
	}
	if got := st.Load(); len(got) != 1 {
		t.Fatalf("persisted len=%d, want 1", len(got))
	}

	// toggling a deleted id must not resurrect it
	if _, err := tm.ToggleTask(drop.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("ToggleTask() after delete err=%v, want %v", err, ErrTaskNotFound)
	}
	if got := len(tm.List()); got != 1 {
		t.Fatalf("len(List())=%d after toggle of deleted id, want 1", got)
	}
	if err := tm.DeleteTask(drop.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("second DeleteTask() err=%v, want %v", err, ErrTaskNotFound)
	}
}

func TestList_ReturnsCopy(t *testing.T) {
	tm, _ := newManager(t)
	_, _ = tm.AddTask("original", "2026-10-20", models.PriorityDaily)

	list := tm.List()
	list[0].Title = "changed"

	if got := tm.List()[0].Title; got != "original" {
		t.Fatalf("Title=%q, want original", got)
	}
}

func TestSaveFailureKeepsState(t *testing.T) {
	tm := NewTaskManager(&failingStore{}, clock.NewFixed(testNow))

	task, err := tm.AddTask("unsaved", "2026-10-20", models.PriorityDaily)
	if err == nil {
		t.Fatal("AddTask() err=nil, want save error")
	}
	if len(tm.List()) != 1 {
		t.Fatal("task dropped after failed save")
	}
	if _, err := tm.ToggleTask(task.ID); err == nil || errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("ToggleTask() err=%v, want save error", err)
	}
}

func TestAddTaskMetrics(t *testing.T) {
	originalAddTaskCount := addTaskCount
	originalTitleLength := taskTitleLength

	registry := prometheus.NewRegistry()

	testAddTaskCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todoapp_tasks_added_total",
			Help: "Test counter",
		},
		[]string{"status"},
	)
	testTitleLength := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "todoapp_task_title_length_bytes",
			Help:    "Test histogram",
			Buckets: []float64{10, 25, 50, 100, 250},
		},
	)
	registry.MustRegister(testAddTaskCount)
	registry.MustRegister(testTitleLength)

	addTaskCount = testAddTaskCount
	taskTitleLength = testTitleLength
	defer func() {
		addTaskCount = originalAddTaskCount
		taskTitleLength = originalTitleLength
	}()

	tm, _ := newManager(t)
	if _, err := tm.AddTask("Valid title", "2026-10-20", models.PriorityDaily); err != nil {
		t.Fatalf("AddTask() err=%v", err)
	}
	if got := testutil.ToFloat64(testAddTaskCount.WithLabelValues("success")); got != 1 {
		t.Errorf("success count=%v, want 1", got)
	}

	failing := NewTaskManager(&failingStore{}, clock.NewFixed(testNow))
	_, _ = failing.AddTask("lost", "2026-10-20", models.PriorityDaily)
	if got := testutil.ToFloat64(testAddTaskCount.WithLabelValues("error")); got != 1 {
		t.Errorf("error count=%v, want 1", got)
	}

	metrics, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather() err=%v", err)
	}
	found := false
	for _, mf := range metrics {
		if mf.GetName() == "todoapp_task_title_length_bytes" {
			found = true
			if got := mf.GetMetric()[0].GetHistogram().GetSampleCount(); got != 2 {
				t.Errorf("histogram sample count=%d, want 2", got)
			}
		}
	}
	if !found {
		t.Error("title length histogram not gathered")
	}
}

func TestToggleTaskMetrics(t *testing.T) {
	original := toggleTaskCount
	testCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "todoapp_tasks_toggled_total", Help: "Test counter"},
		[]string{"state"},
	)
	toggleTaskCount = testCount
	defer func() { toggleTaskCount = original }()

	tm, _ := newManager(t)
	task, _ := tm.AddTask("t", "2026-10-20", models.PriorityDaily)
	_, _ = tm.ToggleTask(task.ID)
	_, _ = tm.ToggleTask(task.ID)
	_, _ = tm.ToggleTask(task.ID)

	if got := testutil.ToFloat64(testCount.WithLabelValues("done")); got != 2 {
		t.Errorf("done count=%v, want 2", got)
	}
	if got := testutil.ToFloat64(testCount.WithLabelValues("reopened")); got != 1 {
		t.Errorf("reopened count=%v, want 1", got)
	}
}
