package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type stepKind int

const (
	kindQuery stepKind = iota
	kindExec
)

// queryStep scripts one expected statement. A nil args slice skips argument
// matching, which inserts need because ids and timestamps are generated.
type queryStep struct {
	kind    stepKind
	pattern *regexp.Regexp
	args    []driver.Value
	columns []string
	rows    [][]driver.Value
	err     error
	result  driver.Result
}

type scriptedDB struct {
	mu    sync.Mutex
	steps []*queryStep
}

func (db *scriptedDB) next(kind stepKind, query string, args []driver.NamedValue) (*queryStep, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.steps) == 0 {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	step := db.steps[0]
	if step.kind != kind {
		return nil, fmt.Errorf("unexpected kind for query %s: got %v want %v", query, kind, step.kind)
	}
	if !step.pattern.MatchString(query) {
		return nil, fmt.Errorf("unexpected query: %s", query)
	}
	if step.args != nil {
		if len(step.args) != len(args) {
			return nil, fmt.Errorf("unexpected arg count for %s: got %d want %d", query, len(args), len(step.args))
		}
		for i := range args {
			if args[i].Value != step.args[i] {
				return nil, fmt.Errorf("unexpected arg %d for %s: got %v want %v", i, query, args[i].Value, step.args[i])
			}
		}
	}
	db.steps = db.steps[1:]
	return step, nil
}

func (db *scriptedDB) verifyComplete() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.steps) != 0 {
		return fmt.Errorf("unmet expectations: %d", len(db.steps))
	}
	return nil
}

type scriptedDriver struct {
	db *scriptedDB
}

func (d *scriptedDriver) Open(string) (driver.Conn, error) {
	return &scriptedConn{db: d.db}, nil
}

type scriptedConn struct {
	db *scriptedDB
}

func (c *scriptedConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("prepare not supported")
}

func (c *scriptedConn) Close() error { return nil }

func (c *scriptedConn) Begin() (driver.Tx, error) {
	return nil, errors.New("transactions not supported")
}

func (c *scriptedConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	step, err := c.db.next(kindQuery, query, args)
	if err != nil {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if step.err != nil {
		return nil, step.err
	}
	return &scriptedRows{columns: step.columns, rows: step.rows}, nil
}

func (c *scriptedConn) Query(query string, args []driver.Value) (driver.Rows, error) {
	named := make([]driver.NamedValue, len(args))
	for i, v := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return c.QueryContext(context.Background(), query, named)
}

func (c *scriptedConn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	step, err := c.db.next(kindExec, query, args)
	if err != nil {
		return nil, err
	}
	if step.err != nil {
		return nil, step.err
	}
	if step.result != nil {
		return step.result, nil
	}
	return scriptedResult{rowsAffected: 1}, nil
}

func (c *scriptedConn) Exec(query string, args []driver.Value) (driver.Result, error) {
	named := make([]driver.NamedValue, len(args))
	for i, v := range args {
		named[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return c.ExecContext(context.Background(), query, named)
}

type scriptedResult struct {
	lastInsertID int64
	rowsAffected int64
}

func (r scriptedResult) LastInsertId() (int64, error) { return r.lastInsertID, nil }

func (r scriptedResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

type scriptedRows struct {
	columns []string
	rows    [][]driver.Value
	idx     int
}

func (r *scriptedRows) Columns() []string { return r.columns }

func (r *scriptedRows) Close() error { return nil }

func (r *scriptedRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.rows) {
		return io.EOF
	}
	row := r.rows[r.idx]
	for i := range dest {
		dest[i] = nil
	}
	for i := range row {
		dest[i] = row[i]
	}
	r.idx++
	return nil
}

var scriptedDriverSeq int64

func newScriptedGormDB(t *testing.T, steps []*queryStep) (*gorm.DB, *scriptedDB, func()) {
	t.Helper()
	state := &scriptedDB{steps: steps}
	driverName := fmt.Sprintf("scripted_%d", atomic.AddInt64(&scriptedDriverSeq, 1))
	sql.Register(driverName, &scriptedDriver{db: state})

	sqlDB, err := sql.Open(driverName, "")
	if err != nil {
		t.Fatalf("failed to open sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("failed to create gorm db: %v", err)
	}

	cleanup := func() {
		_ = sqlDB.Close()
	}
	return gormDB, state, cleanup
}

var (
	taskQueryPattern   = regexp.MustCompile(`SELECT task_description, assigned_to, assigned_to_multiple FROM .tasks. WHERE id = \?`)
	rosterQueryPattern = regexp.MustCompile(`SELECT id, email, name, role FROM .employees. WHERE role IN \(\?,\?\) AND is_active = \?`)
	dedupQueryPattern  = regexp.MustCompile(`SELECT COUNT\(\*\) FROM notifications`)
	insertPattern      = regexp.MustCompile(`INSERT INTO .notifications.`)
)

func fixedClock() (time.Time, func() time.Time) {
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	return now, func() time.Time { return now }
}

func taskRow(description, assignedTo, assignedToMultiple string) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: taskQueryPattern,
		columns: []string{"task_description", "assigned_to", "assigned_to_multiple"},
		rows:    [][]driver.Value{{description, assignedTo, []byte(assignedToMultiple)}},
	}
}

func rosterRows(rows [][]driver.Value) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: rosterQueryPattern,
		args:    []driver.Value{"admin", "superadmin", true},
		columns: []string{"id", "email", "name", "role"},
		rows:    rows,
	}
}

func dedupProbe(recipient, taskID, eventKind string, cutoff time.Time, count int64) *queryStep {
	return &queryStep{
		kind:    kindQuery,
		pattern: dedupQueryPattern,
		args:    []driver.Value{recipient, taskID, eventKind, cutoff},
		columns: []string{"COUNT(*)"},
		rows:    [][]driver.Value{{count}},
	}
}

func TestFanoutProgressUpdateNotifiesAdmins(t *testing.T) {
	now, clock := fixedClock()
	cutoff := now.Add(-2 * time.Minute)

	steps := []*queryStep{
		taskRow("Prepare quarterly report", "emp-1", `[]`),
		rosterRows([][]driver.Value{
			{"admin-1", "a1@example.com", "Admin One", "admin"},
			{"admin-2", "a2@example.com", "Admin Two", "admin"},
		}),
		dedupProbe("admin-1", "task-1", EventProgressUpdated, cutoff, 0),
		{kind: kindExec, pattern: insertPattern},
		dedupProbe("admin-2", "task-1", EventProgressUpdated, cutoff, 0),
		{kind: kindExec, pattern: insertPattern},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewTaskNotificationService(gormDB)
	service.window = 2 * time.Minute
	service.now = clock

	result, err := service.Fanout(context.Background(), &TaskEvent{
		Kind:        EventProgressUpdated,
		TaskID:      "task-1",
		ActorID:     "emp-1",
		ActorRole:   "employee",
		ActorName:   "Employee One",
		OldProgress: intPtr(20),
		NewProgress: intPtr(60),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Written != 2 || result.Skipped != 0 || len(result.Errors) != 0 {
		t.Fatalf("result = %+v, want 2 written", result)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestFanoutSkipsDuplicateInsideWindow(t *testing.T) {
	now, clock := fixedClock()
	cutoff := now.Add(-2 * time.Minute)

	steps := []*queryStep{
		taskRow("Prepare quarterly report", "emp-1", `[]`),
		rosterRows([][]driver.Value{
			{"admin-1", "a1@example.com", "Admin One", "admin"},
		}),
		dedupProbe("admin-1", "task-1", EventProgressUpdated, cutoff, 1),
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewTaskNotificationService(gormDB)
	service.window = 2 * time.Minute
	service.now = clock

	result, err := service.Fanout(context.Background(), &TaskEvent{
		Kind:        EventProgressUpdated,
		TaskID:      "task-1",
		ActorID:     "emp-1",
		ActorRole:   "employee",
		NewProgress: intPtr(60),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Written != 0 || result.Skipped != 1 {
		t.Fatalf("result = %+v, want 1 skipped and nothing written", result)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestFanoutFallsBackToSuperadminWhenRosterEmpty(t *testing.T) {
	now, clock := fixedClock()
	cutoff := now.Add(-2 * time.Minute)

	steps := []*queryStep{
		taskRow("Prepare quarterly report", "emp-1", `[]`),
		rosterRows(nil),
		dedupProbe(SuperadminFallbackID, "task-1", EventProgressUpdated, cutoff, 0),
		{kind: kindExec, pattern: insertPattern},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewTaskNotificationService(gormDB)
	service.window = 2 * time.Minute
	service.now = clock

	result, err := service.Fanout(context.Background(), &TaskEvent{
		Kind:        EventProgressUpdated,
		TaskID:      "task-1",
		ActorID:     "emp-1",
		ActorRole:   "employee",
		NewProgress: intPtr(40),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Written != 1 {
		t.Fatalf("result = %+v, want superadmin fallback written", result)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestFanoutTaskNotFound(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: taskQueryPattern,
			columns: []string{"task_description", "assigned_to", "assigned_to_multiple"},
			rows:    [][]driver.Value{},
		},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewTaskNotificationService(gormDB)

	_, err := service.Fanout(context.Background(), &TaskEvent{
		Kind:      EventNoteAdded,
		TaskID:    "missing",
		ActorID:   "emp-1",
		ActorRole: "employee",
	})
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestFanoutContinuesAfterWriteFailure(t *testing.T) {
	now, clock := fixedClock()
	cutoff := now.Add(-2 * time.Minute)
	writeErr := errors.New("insert failed")

	steps := []*queryStep{
		taskRow("Prepare quarterly report", "emp-1", `[]`),
		rosterRows([][]driver.Value{
			{"admin-1", "a1@example.com", "Admin One", "admin"},
			{"admin-2", "a2@example.com", "Admin Two", "admin"},
		}),
		dedupProbe("admin-1", "task-1", EventProgressUpdated, cutoff, 0),
		{kind: kindExec, pattern: insertPattern, err: writeErr},
		dedupProbe("admin-2", "task-1", EventProgressUpdated, cutoff, 0),
		{kind: kindExec, pattern: insertPattern},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewTaskNotificationService(gormDB)
	service.window = 2 * time.Minute
	service.now = clock

	result, err := service.Fanout(context.Background(), &TaskEvent{
		Kind:        EventProgressUpdated,
		TaskID:      "task-1",
		ActorID:     "emp-1",
		ActorRole:   "employee",
		NewProgress: intPtr(80),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Written != 1 {
		t.Fatalf("result = %+v, want second recipient written", result)
	}
	if len(result.Errors) != 1 || result.Errors[0].Recipient != "admin-1" {
		t.Fatalf("errors = %v, want one failure for admin-1", result.Errors)
	}
	if !errors.Is(result.Errors[0], writeErr) {
		t.Fatalf("expected wrapped write error, got %v", result.Errors[0])
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestFanoutDedupProbeFailureWritesAnyway(t *testing.T) {
	steps := []*queryStep{
		taskRow("Prepare quarterly report", "emp-1", `[]`),
		rosterRows([][]driver.Value{
			{"admin-1", "a1@example.com", "Admin One", "admin"},
		}),
		{kind: kindQuery, pattern: dedupQueryPattern, err: errors.New("probe failed")},
		{kind: kindExec, pattern: insertPattern},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewTaskNotificationService(gormDB)
	_, clock := fixedClock()
	service.now = clock

	result, err := service.Fanout(context.Background(), &TaskEvent{
		Kind:        EventProgressUpdated,
		TaskID:      "task-1",
		ActorID:     "emp-1",
		ActorRole:   "employee",
		NewProgress: intPtr(50),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Written != 1 || result.Skipped != 0 {
		t.Fatalf("result = %+v, want write despite probe failure", result)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestFanoutUnknownKindTouchesNothing(t *testing.T) {
	gormDB, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	service := NewTaskNotificationService(gormDB)

	result, err := service.Fanout(context.Background(), &TaskEvent{
		Kind:      "task_archived",
		TaskID:    "task-1",
		ActorID:   "emp-1",
		ActorRole: "employee",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Written != 0 || result.Skipped != 0 || len(result.Errors) != 0 {
		t.Fatalf("result = %+v, want empty result", result)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestFanoutMultipleAssigneesFromJSONColumn(t *testing.T) {
	now, clock := fixedClock()
	cutoff := now.Add(-2 * time.Minute)

	steps := []*queryStep{
		taskRow("Prepare quarterly report", "emp-1", `["emp-2","emp-3"]`),
		rosterRows([][]driver.Value{
			{"admin-1", "a1@example.com", "Admin One", "admin"},
		}),
		dedupProbe("emp-1", "task-1", EventTaskStatusChanged, cutoff, 0),
		{kind: kindExec, pattern: insertPattern},
		dedupProbe("emp-2", "task-1", EventTaskStatusChanged, cutoff, 0),
		{kind: kindExec, pattern: insertPattern},
		dedupProbe("emp-3", "task-1", EventTaskStatusChanged, cutoff, 0),
		{kind: kindExec, pattern: insertPattern},
	}

	gormDB, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	service := NewTaskNotificationService(gormDB)
	service.window = 2 * time.Minute
	service.now = clock

	result, err := service.Fanout(context.Background(), &TaskEvent{
		Kind:      EventTaskStatusChanged,
		TaskID:    "task-1",
		ActorID:   "admin-1",
		ActorRole: "admin",
		ActorName: "Admin One",
		Message:   "Task status changed to Completed",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Written != 3 {
		t.Fatalf("result = %+v, want all assignees written", result)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
