package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"tasklist/internal/models"
)

func sampleTasks() []models.Task {
	return []models.Task{
		{ID: 1700000000001, Title: "Write report", Date: "2026-10-20", Priority: models.PriorityImportant},
		{ID: 1700000000002, Title: "Water plants", Date: "2026-10-19", Priority: models.PriorityDaily, Done: true},
	}
}

func assertSameTasks(t *testing.T, got, want []models.Task) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len=%d, want %d (%+v)", len(got), len(want), got)
	}
	byID := func(ts []models.Task) []models.Task {
		out := append([]models.Task(nil), ts...)
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return out
	}
	g, w := byID(got), byID(want)
	for i := range w {
		if g[i] != w[i] {
			t.Fatalf("task[%d]=%+v, want %+v", i, g[i], w[i])
		}
	}
}

func backends(t *testing.T) map[string]KV {
	t.Helper()

	fileKV, err := NewFileKV(filepath.Join(t.TempDir(), "slots"))
	if err != nil {
		t.Fatalf("NewFileKV() err=%v, want nil", err)
	}
	sqlKV, err := NewSQLKV("sqlite", SQLitePath(t.TempDir()))
	if err != nil {
		t.Fatalf("NewSQLKV() err=%v, want nil", err)
	}
	t.Cleanup(func() { _ = sqlKV.Close() })

	return map[string]KV{
		"memory": NewMemoryKV(),
		"file":   fileKV,
		"sqlite": sqlKV,
	}
}

func TestStore_RoundTrip(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := NewStore(kv, "")
			if err := st.Save(sampleTasks()); err != nil {
				t.Fatalf("Save() err=%v, want nil", err)
			}
			assertSameTasks(t, st.Load(), sampleTasks())
		})
	}
}

func TestStore_LastWriteWins(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			st := NewStore(kv, DefaultSlot)
			if err := st.Save(sampleTasks()); err != nil {
				t.Fatalf("first Save() err=%v", err)
			}
			if err := st.Save(sampleTasks()[:1]); err != nil {
				t.Fatalf("second Save() err=%v", err)
			}
			assertSameTasks(t, st.Load(), sampleTasks()[:1])
		})
	}
}

func TestStore_LoadMissingSlot(t *testing.T) {
	for name, kv := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got := NewStore(kv, "nothing-here").Load()
			if got == nil || len(got) != 0 {
				t.Fatalf("Load()=%v, want empty non-nil list", got)
			}
		})
	}
}

func TestStore_LoadMalformed(t *testing.T) {
	for _, raw := range []string{"{not json", `{"id":1}`, "null", ""} {
		kv := NewMemoryKV()
		_ = kv.Put(DefaultSlot, raw)

		got := NewStore(kv, DefaultSlot).Load()
		if got == nil || len(got) != 0 {
			t.Errorf("Load() with %q = %v, want empty list", raw, got)
		}
	}
}

func TestStore_SaveNilWritesEmptyArray(t *testing.T) {
	kv := NewMemoryKV()
	if err := NewStore(kv, DefaultSlot).Save(nil); err != nil {
		t.Fatalf("Save(nil) err=%v", err)
	}
	raw, ok, _ := kv.Get(DefaultSlot)
	if !ok || raw != "[]" {
		t.Fatalf("slot=%q ok=%v, want []", raw, ok)
	}
}

func TestEncodeTasks_Layout(t *testing.T) {
	data, err := EncodeTasks([]models.Task{{ID: 5, Title: "A", Date: "2026-10-19", Priority: models.PriorityDaily}})
	if err != nil {
		t.Fatalf("EncodeTasks() err=%v", err)
	}
	want := `[{"id":5,"title":"A","date":"2026-10-19","priority":"daily","done":false}]`
	if string(data) != want {
		t.Fatalf("EncodeTasks()=%s, want %s", data, want)
	}
}

func TestFileKV_SlotFile(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatalf("NewFileKV() err=%v", err)
	}
	if err := kv.Put("tasks", "[]"); err != nil {
		t.Fatalf("Put() err=%v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "tasks.json"))
	if err != nil {
		t.Fatalf("read slot file: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("slot file=%q, want []", data)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("dir has %d entries, want only the slot file", len(entries))
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("redis", t.TempDir(), "", "")
	if !errors.Is(err, ErrUnknownDriver) {
		t.Fatalf("Open() err=%v, want %v", err, ErrUnknownDriver)
	}
}

func TestOpen_SQLiteDefaultsToPath(t *testing.T) {
	dir := t.TempDir()
	st, err := Open("sqlite", dir, "", "")
	if err != nil {
		t.Fatalf("Open() err=%v", err)
	}
	defer st.Close()

	if err := st.Save(sampleTasks()); err != nil {
		t.Fatalf("Save() err=%v", err)
	}
	if _, err := os.Stat(SQLitePath(dir)); err != nil {
		t.Fatalf("sqlite file missing: %v", err)
	}
}

func TestStore_ReadStrict(t *testing.T) {
	kv := NewMemoryKV()
	st := NewStore(kv, "")

	if _, err := st.Read(); !errors.Is(err, ErrEmptySlot) {
		t.Fatalf("Read() err=%v, want ErrEmptySlot", err)
	}
	_ = kv.Put(DefaultSlot, "{broken")
	if _, err := st.Read(); err == nil {
		t.Fatal("Read() err=nil on malformed slot")
	}
}

func TestCopy_FileToSQLite(t *testing.T) {
	fileKV, err := NewFileKV(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileKV() err=%v", err)
	}
	sqlKV, err := NewSQLKV("sqlite", SQLitePath(t.TempDir()))
	if err != nil {
		t.Fatalf("NewSQLKV() err=%v", err)
	}
	defer sqlKV.Close()

	src, dst := NewStore(fileKV, ""), NewStore(sqlKV, "")
	if err := src.Save(sampleTasks()); err != nil {
		t.Fatalf("Save() err=%v", err)
	}

	n, err := Copy(dst, src)
	if err != nil || n != 2 {
		t.Fatalf("Copy()=(%d, %v), want (2, nil)", n, err)
	}
	assertSameTasks(t, dst.Load(), sampleTasks())
}

func TestCopy_EmptySourceLeavesTarget(t *testing.T) {
	src, dst := NewStore(NewMemoryKV(), ""), NewStore(NewMemoryKV(), "")
	if err := dst.Save(sampleTasks()); err != nil {
		t.Fatal(err)
	}

	if _, err := Copy(dst, src); !errors.Is(err, ErrEmptySlot) {
		t.Fatalf("Copy() err=%v, want ErrEmptySlot", err)
	}
	assertSameTasks(t, dst.Load(), sampleTasks())
}
