package service_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"todo/internal/service"
	"todo/internal/testutil"
)

var fixedNow = time.Date(2024, 5, 1, 10, 0, 0, 123456789, time.UTC)

// seqIDs returns a generator producing id-1, id-2, ...
func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newManager(t *testing.T, st *testutil.FakeStore, opts ...service.Option) *service.Manager {
	t.Helper()
	opts = append([]service.Option{
		service.WithClock(func() time.Time { return fixedNow }),
		service.WithIDGenerator(seqIDs()),
	}, opts...)
	return service.Open(context.Background(), st, opts...)
}

func ids(tasks []service.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func assertUniqueIDs(t *testing.T, tasks []service.Task) {
	t.Helper()
	seen := make(map[string]bool)
	for _, task := range tasks {
		if seen[task.ID] {
			t.Fatalf("duplicate id %q in %v", task.ID, ids(tasks))
		}
		seen[task.ID] = true
	}
}

func TestOpen_EmptyStore(t *testing.T) {
	st := testutil.NewFakeStore()
	m := newManager(t, st)

	if got := len(m.Tasks()); got != 0 {
		t.Errorf("expected empty collection, got %d tasks", got)
	}
	if st.Writes != 0 {
		t.Errorf("expected no writes on open, got %d", st.Writes)
	}
}

func TestOpen_RehydratesStoredCollection(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Put(service.DefaultKey, `[
		{"id":"b","text":"Walk dog","completed":true,"createdAt":"2024-05-02T08:30:00.000Z"},
		{"id":"a","text":"Buy milk","completed":false,"createdAt":"2024-05-01T10:00:00.000Z"}
	]`)

	m := newManager(t, st)
	tasks := m.Tasks()

	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != "b" || tasks[1].ID != "a" {
		t.Errorf("expected order [b a], got %v", ids(tasks))
	}
	if !tasks[0].Completed {
		t.Error("expected task b to be completed")
	}
	want := time.Date(2024, 5, 2, 8, 30, 0, 0, time.UTC)
	if !tasks[0].CreatedAt.Equal(want) {
		t.Errorf("expected createdAt %v, got %v", want, tasks[0].CreatedAt)
	}
}

func TestOpen_CorruptedValue(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Put(service.DefaultKey, `{not json`)
	logger, hook := logtest.NewNullLogger()

	m := newManager(t, st, service.WithLogger(logger))

	if got := len(m.Tasks()); got != 0 {
		t.Errorf("expected empty collection, got %d tasks", got)
	}
	entry := hook.LastEntry()
	if entry == nil {
		t.Fatal("expected a diagnostic to be logged")
	}
	if entry.Level != logrus.WarnLevel {
		t.Errorf("expected warn level, got %s", entry.Level)
	}
	if v, _ := st.Value(service.DefaultKey); v != `{not json` {
		t.Errorf("expected corrupted value to be left untouched, got %q", v)
	}
}

func TestOpen_CorruptedValueKeptUntilMutation(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Put(service.DefaultKey, `[{"id":"a","text":"x","completed":false,"createdAt":"yesterday"}]`)
	m := newManager(t, st)
	ctx := context.Background()

	// No-op operations must not overwrite the stored value.
	if _, ok, _ := m.Add(ctx, "   "); ok {
		t.Fatal("expected blank add to be a no-op")
	}
	if found, _ := m.Toggle(ctx, "a"); found {
		t.Fatal("expected toggle of unknown id to be a no-op")
	}
	if found, _ := m.Delete(ctx, "a"); found {
		t.Fatal("expected delete of unknown id to be a no-op")
	}
	if n, _ := m.ClearCompleted(ctx); n != 0 {
		t.Fatalf("expected nothing cleared, got %d", n)
	}
	if st.Writes != 0 {
		t.Fatalf("expected no writes, got %d", st.Writes)
	}

	if _, _, err := m.Add(ctx, "fresh start"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, _ := st.Value(service.DefaultKey)
	if strings.Contains(v, "yesterday") {
		t.Errorf("expected corrupted value to be replaced, got %q", v)
	}
}

func TestOpen_StoreReadError(t *testing.T) {
	st := testutil.NewFakeStore()
	st.GetErr = errors.New("disk on fire")
	logger, hook := logtest.NewNullLogger()

	m := newManager(t, st, service.WithLogger(logger))

	if got := len(m.Tasks()); got != 0 {
		t.Errorf("expected empty collection, got %d tasks", got)
	}
	if len(hook.AllEntries()) == 0 {
		t.Error("expected read failure to be logged")
	}
}

func TestOpen_CustomKey(t *testing.T) {
	st := testutil.NewFakeStore()
	m := newManager(t, st, service.WithKey("work"))

	if _, _, err := m.Add(context.Background(), "ship it"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := st.Value("work"); !ok {
		t.Error("expected collection under key 'work'")
	}
	if _, ok := st.Value(service.DefaultKey); ok {
		t.Error("expected nothing under the default key")
	}
}

func TestAdd_PrependsNewTask(t *testing.T) {
	st := testutil.NewFakeStore()
	m := newManager(t, st)
	ctx := context.Background()

	if _, _, err := m.Add(ctx, "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	task, ok, err := m.Add(ctx, "  buy milk  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected task to be added")
	}

	tasks := m.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != task.ID {
		t.Errorf("expected new task at position 0, got %v", ids(tasks))
	}
	if tasks[0].Text != "buy milk" {
		t.Errorf("expected trimmed text, got %q", tasks[0].Text)
	}
	if tasks[0].Completed {
		t.Error("expected new task to be active")
	}
	if tasks[0].ID == tasks[1].ID {
		t.Error("expected a fresh id")
	}
	if !tasks[0].CreatedAt.Equal(fixedNow.Truncate(time.Millisecond)) {
		t.Errorf("expected createdAt %v, got %v", fixedNow, tasks[0].CreatedAt)
	}
	if st.Writes != 2 {
		t.Errorf("expected 2 writes, got %d", st.Writes)
	}
}

func TestAdd_BlankTextIsNoop(t *testing.T) {
	st := testutil.NewFakeStore()
	m := newManager(t, st)
	ctx := context.Background()
	if _, _, err := m.Add(ctx, "keep"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := m.Tasks()

	for _, text := range []string{"", "   ", "\t\n"} {
		_, ok, err := m.Add(ctx, text)
		if err != nil {
			t.Fatalf("Add(%q): unexpected error: %v", text, err)
		}
		if ok {
			t.Errorf("Add(%q): expected no-op", text)
		}
	}

	after := m.Tasks()
	if len(after) != len(before) || after[0] != before[0] {
		t.Errorf("expected collection unchanged, got %v", ids(after))
	}
	if st.Writes != 1 {
		t.Errorf("expected 1 write, got %d", st.Writes)
	}
}

func TestAdd_TextTooLong(t *testing.T) {
	m := newManager(t, testutil.NewFakeStore())
	ctx := context.Background()

	_, ok, err := m.Add(ctx, strings.Repeat("x", service.MaxTextLength+1))
	if !errors.Is(err, service.ErrTextTooLong) {
		t.Fatalf("expected ErrTextTooLong, got %v", err)
	}
	if ok || len(m.Tasks()) != 0 {
		t.Error("expected collection unchanged")
	}

	// Limit counts characters, not bytes.
	if _, ok, err := m.Add(ctx, strings.Repeat("é", service.MaxTextLength)); err != nil || !ok {
		t.Errorf("expected %d two-byte characters to be accepted, got ok=%v err=%v", service.MaxTextLength, ok, err)
	}
}

func TestAdd_RegeneratesRepeatedID(t *testing.T) {
	gen := []string{"same", "same", "other"}
	i := 0
	next := func() string {
		id := gen[i]
		i++
		return id
	}
	m := service.Open(context.Background(), testutil.NewFakeStore(), service.WithIDGenerator(next))
	ctx := context.Background()

	m.Add(ctx, "one")
	m.Add(ctx, "two")

	tasks := m.Tasks()
	assertUniqueIDs(t, tasks)
	if tasks[0].ID != "other" {
		t.Errorf("expected regenerated id 'other', got %q", tasks[0].ID)
	}
}

func TestAdd_GeneratorExhausted(t *testing.T) {
	m := service.Open(context.Background(), testutil.NewFakeStore(),
		service.WithIDGenerator(func() string { return "fixed" }))
	ctx := context.Background()

	if _, _, err := m.Add(ctx, "one"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := m.Add(ctx, "two"); err == nil {
		t.Fatal("expected error when no unique id can be generated")
	}
	if got := len(m.Tasks()); got != 1 {
		t.Errorf("expected 1 task, got %d", got)
	}
}

func TestToggle(t *testing.T) {
	st := testutil.NewFakeStore()
	m := newManager(t, st)
	ctx := context.Background()
	task, _, _ := m.Add(ctx, "buy milk")

	found, err := m.Toggle(ctx, task.ID)
	if err != nil || !found {
		t.Fatalf("expected toggle to succeed, got found=%v err=%v", found, err)
	}
	if got, _ := m.Find(task.ID); !got.Completed {
		t.Error("expected task to be completed after one toggle")
	}

	m.Toggle(ctx, task.ID)
	got, _ := m.Find(task.ID)
	if got.Completed {
		t.Error("expected task to be active after two toggles")
	}
	if got.ID != task.ID || !got.CreatedAt.Equal(task.CreatedAt) {
		t.Error("expected id and createdAt to be unchanged")
	}
	if st.Writes != 3 {
		t.Errorf("expected 3 writes, got %d", st.Writes)
	}
}

func TestToggle_UnknownID(t *testing.T) {
	st := testutil.NewFakeStore()
	m := newManager(t, st)
	ctx := context.Background()
	m.Add(ctx, "buy milk")

	found, err := m.Toggle(ctx, "missing")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found {
		t.Error("expected found=false")
	}
	if st.Writes != 1 {
		t.Errorf("expected no extra write, got %d writes", st.Writes)
	}
}

func TestDelete_RemovesOnlyMatch(t *testing.T) {
	m := newManager(t, testutil.NewFakeStore())
	ctx := context.Background()
	for _, text := range []string{"a", "b", "c", "d"} {
		m.Add(ctx, text)
	}
	// Collection is [id-4 id-3 id-2 id-1].

	found, err := m.Delete(ctx, "id-3")
	if err != nil || !found {
		t.Fatalf("expected delete to succeed, got found=%v err=%v", found, err)
	}

	got := strings.Join(ids(m.Tasks()), " ")
	if got != "id-4 id-2 id-1" {
		t.Errorf("expected [id-4 id-2 id-1], got [%s]", got)
	}

	if found, _ := m.Delete(ctx, "id-3"); found {
		t.Error("expected second delete to be a no-op")
	}
}

func TestClearCompleted_PreservesOrder(t *testing.T) {
	st := testutil.NewFakeStore()
	m := newManager(t, st)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		m.Add(ctx, fmt.Sprintf("task %d", i))
	}
	before := ids(m.Tasks())
	m.Toggle(ctx, before[1])
	m.Toggle(ctx, before[3])

	removed, err := m.ClearCompleted(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	got := strings.Join(ids(m.Tasks()), " ")
	want := strings.Join([]string{before[0], before[2], before[4]}, " ")
	if got != want {
		t.Errorf("expected [%s], got [%s]", want, got)
	}

	stored, _ := st.Value(service.DefaultKey)
	decoded, err := service.DecodeTasks(stored)
	if err != nil {
		t.Fatalf("decode stored value: %v", err)
	}
	if strings.Join(ids(decoded), " ") != want {
		t.Errorf("expected store to hold [%s], got %v", want, ids(decoded))
	}
}

func TestCounts(t *testing.T) {
	m := newManager(t, testutil.NewFakeStore())
	ctx := context.Background()
	for _, text := range []string{"a", "b", "c"} {
		m.Add(ctx, text)
	}
	m.Toggle(ctx, "id-2")

	got := m.Counts()
	want := service.Counts{Total: 3, Active: 2, Completed: 1}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestStoreMirrorsMemoryAfterEachOperation(t *testing.T) {
	st := testutil.NewFakeStore()
	m := newManager(t, st)
	ctx := context.Background()

	ops := []func(){
		func() { m.Add(ctx, "a") },
		func() { m.Add(ctx, "b") },
		func() { m.Toggle(ctx, "id-1") },
		func() { m.Add(ctx, "c") },
		func() { m.Delete(ctx, "id-2") },
		func() { m.Toggle(ctx, "id-3") },
		func() { m.ClearCompleted(ctx) },
	}
	for i, op := range ops {
		op()
		tasks := m.Tasks()
		assertUniqueIDs(t, tasks)

		stored, _ := st.Value(service.DefaultKey)
		decoded, err := service.DecodeTasks(stored)
		if err != nil {
			t.Fatalf("op %d: decode stored value: %v", i, err)
		}
		if len(decoded) != len(tasks) {
			t.Fatalf("op %d: store has %d tasks, memory has %d", i, len(decoded), len(tasks))
		}
		for j := range tasks {
			if decoded[j].ID != tasks[j].ID || decoded[j].Completed != tasks[j].Completed ||
				!decoded[j].CreatedAt.Equal(tasks[j].CreatedAt) {
				t.Fatalf("op %d: store and memory differ at %d: %+v vs %+v", i, j, decoded[j], tasks[j])
			}
		}
	}
}

func TestPersistFailure_KeepsChange(t *testing.T) {
	st := testutil.NewFakeStore()
	logger, hook := logtest.NewNullLogger()
	m := newManager(t, st, service.WithLogger(logger))
	ctx := context.Background()

	st.SetErr = errors.New("quota exceeded")
	task, ok, err := m.Add(ctx, "buy milk")
	if !errors.Is(err, service.ErrPersist) {
		t.Fatalf("expected ErrPersist, got %v", err)
	}
	if !ok {
		t.Error("expected task to be added in memory")
	}
	if _, found := m.Find(task.ID); !found {
		t.Error("expected task to remain in memory")
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.WarnLevel {
		t.Error("expected write failure to be logged as a warning")
	}

	// Store catches up on the next successful write.
	st.SetErr = nil
	if _, err := m.Toggle(ctx, task.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := st.Value(service.DefaultKey)
	decoded, _ := service.DecodeTasks(stored)
	if len(decoded) != 1 || decoded[0].ID != task.ID || !decoded[0].Completed {
		t.Errorf("expected store to hold the toggled task, got %+v", decoded)
	}
}

func TestPersistFailure_WrapsCause(t *testing.T) {
	st := testutil.NewFakeStore()
	m := newManager(t, st)
	ctx := context.Background()
	m.Add(ctx, "a")

	st.SetErr = context.Canceled
	_, err := m.Delete(ctx, "id-1")
	if !errors.Is(err, service.ErrPersist) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected error to wrap ErrPersist and the cause, got %v", err)
	}
}

func TestNilStore(t *testing.T) {
	m := service.Open(context.Background(), nil)

	_, ok, err := m.Add(context.Background(), "a")
	if !ok {
		t.Error("expected task to be added in memory")
	}
	if !errors.Is(err, service.ErrPersist) {
		t.Errorf("expected ErrPersist, got %v", err)
	}
}

func TestTasksReturnsCopy(t *testing.T) {
	m := newManager(t, testutil.NewFakeStore())
	m.Add(context.Background(), "a")

	tasks := m.Tasks()
	tasks[0].Text = "changed"

	if got, _ := m.Find(tasks[0].ID); got.Text != "a" {
		t.Errorf("expected internal state unchanged, got %q", got.Text)
	}
}

func TestOpen_OutOfRangeTimestampNotRewritten(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Put(service.DefaultKey, `[{"id":"a","text":"old","completed":false,"createdAt":253402300800000}]`)
	ctx := context.Background()

	m := newManager(t, st)
	if n := len(m.Tasks()); n != 0 {
		t.Fatalf("expected value with year 10000 to be rejected, got %d tasks", n)
	}
	if _, _, err := m.Add(ctx, "new"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reopened := newManager(t, st)
	tasks := reopened.Tasks()
	if len(tasks) != 1 || tasks[0].Text != "new" {
		t.Errorf("expected the rewritten collection to reload, got %+v", tasks)
	}
}

func TestOpen_BlankStoredTextRejected(t *testing.T) {
	st := testutil.NewFakeStore()
	st.Put(service.DefaultKey, `[{"id":"a","text":"","completed":false,"createdAt":"2024-05-01T10:00:00.000Z"}]`)

	m := newManager(t, st)
	if n := len(m.Tasks()); n != 0 {
		t.Errorf("expected record without text to be rejected, got %d tasks", n)
	}
}
