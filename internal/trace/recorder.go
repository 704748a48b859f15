// Package trace records a simulation run into an SQLite database: one row
// per published frame and one per SDRAM timing violation.
package trace

import (
	"database/sql"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"vdpsim/internal/sdram"
	"vdpsim/internal/session"
)

// ErrExists is returned when the database file is already there.
var ErrExists = errors.New("trace file already exists")

// Meta describes the run being recorded.
type Meta struct {
	Width, Height int
	ClockHz       float64
	Design        string
}

type frameRow struct {
	index     uint64
	virtualPS uint64
	cycles    uint64
	wallNS    int64
	digest    string
}

type violationRow struct {
	timePS uint64
	bank   int
	kind   string
	detail string
}

// Recorder buffers rows and writes them in batches. It implements
// session.Observer and sdram.ViolationReporter and is safe for concurrent use.
type Recorder struct {
	db        *sql.DB
	path      string
	runID     string
	batchSize int
	log       *log.Logger

	mu         sync.Mutex
	frames     []frameRow
	violations []violationRow
	err        error
	closed     bool

	frameCount     uint64
	violationCount uint64
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithBatchSize sets how many rows are buffered before a flush.
func WithBatchSize(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// WithLogger sets the recorder's logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Recorder) {
		r.log = l
	}
}

// Open creates the database at path and records the run metadata. An empty
// path picks a unique name in the working directory. Buffered rows are
// flushed when the program exits through atexit.
func Open(path string, meta Meta, opts ...Option) (*Recorder, error) {
	runID := xid.New().String()
	if path == "" {
		path = "vdpsim_trace_" + runID
	}
	if !strings.HasSuffix(path, ".sqlite3") {
		path += ".sqlite3"
	}

	if _, err := os.Stat(path); err == nil {
		return nil, errors.Wrap(ErrExists, path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}

	r := &Recorder{
		db:        db,
		path:      path,
		runID:     runID,
		batchSize: 4096,
		log:       log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.createTables(); err != nil {
		db.Close()
		os.Remove(path)
		return nil, err
	}
	_, err = db.Exec(`INSERT INTO sessions VALUES (?, ?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339), meta.Width, meta.Height, meta.ClockHz, meta.Design)
	if err != nil {
		db.Close()
		os.Remove(path)
		return nil, errors.Wrap(err, "record session")
	}

	r.log.Printf("recording run %s to %s", runID, path)
	atexit.Register(func() { r.Close() })

	return r, nil
}

func (r *Recorder) createTables() error {
	stmts := []string{
		`CREATE TABLE sessions (
			id       TEXT PRIMARY KEY,
			started  TEXT NOT NULL,
			width    INTEGER NOT NULL,
			height   INTEGER NOT NULL,
			clock_hz REAL NOT NULL,
			design   TEXT
		)`,
		`CREATE TABLE frames (
			session    TEXT NOT NULL,
			idx        INTEGER NOT NULL,
			virtual_ps INTEGER NOT NULL,
			cycles     INTEGER NOT NULL,
			wall_ns    INTEGER NOT NULL,
			digest     TEXT NOT NULL
		)`,
		`CREATE INDEX frames_idx_index ON frames (idx)`,
		`CREATE TABLE violations (
			session TEXT NOT NULL,
			time_ps INTEGER NOT NULL,
			bank    INTEGER NOT NULL,
			kind    TEXT NOT NULL,
			detail  TEXT NOT NULL
		)`,
		`CREATE INDEX violations_kind_index ON violations (kind)`,
	}
	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return errors.Wrap(err, "create tables")
		}
	}
	return nil
}

// FramePresented records a published frame.
func (r *Recorder) FramePresented(info session.FrameInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.frames = append(r.frames, frameRow{
		index:     info.Index,
		virtualPS: uint64(info.VirtualTime),
		cycles:    info.Cycles,
		wallNS:    int64(info.Wall),
		// SQLite integers are signed, so the digest is stored as text.
		digest: fmt.Sprintf("%016x", info.Digest),
	})
	r.frameCount++
	r.flushIfFull()
}

// Violation records an SDRAM timing or protocol violation.
func (r *Recorder) Violation(v sdram.Violation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.violations = append(r.violations, violationRow{
		timePS: uint64(v.Time),
		bank:   v.Bank,
		kind:   v.Kind.String(),
		detail: v.Detail,
	})
	r.violationCount++
	r.flushIfFull()
}

func (r *Recorder) flushIfFull() {
	if len(r.frames)+len(r.violations) >= r.batchSize {
		r.keepErr(r.flush())
	}
}

func (r *Recorder) keepErr(err error) {
	if err != nil {
		r.log.Printf("flush failed: %v", err)
		if r.err == nil {
			r.err = err
		}
	}
}

// Flush writes buffered rows to the database.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	err := r.flush()
	r.keepErr(err)
	return err
}

func (r *Recorder) flush() error {
	if len(r.frames) == 0 && len(r.violations) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin")
	}

	if err := r.insertFrames(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := r.insertViolations(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}

	r.frames = r.frames[:0]
	r.violations = r.violations[:0]
	return nil
}

func (r *Recorder) insertFrames(tx *sql.Tx) error {
	if len(r.frames) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT INTO frames VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare frames")
	}
	defer stmt.Close()

	for _, f := range r.frames {
		if _, err := stmt.Exec(r.runID, int64(f.index), int64(f.virtualPS), int64(f.cycles), f.wallNS, f.digest); err != nil {
			return errors.Wrapf(err, "insert frame %d", f.index)
		}
	}
	return nil
}

func (r *Recorder) insertViolations(tx *sql.Tx) error {
	if len(r.violations) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT INTO violations VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "prepare violations")
	}
	defer stmt.Close()

	for _, v := range r.violations {
		if _, err := stmt.Exec(r.runID, int64(v.timePS), v.bank, v.kind, v.detail); err != nil {
			return errors.Wrap(err, "insert violation")
		}
	}
	return nil
}

// Close flushes and closes the database. It returns the first error seen
// since Open. Calling it again does nothing.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return r.err
	}

	r.keepErr(r.flush())
	r.closed = true
	if err := r.db.Close(); err != nil && r.err == nil {
		r.err = errors.Wrap(err, "close")
	}
	r.log.Printf("run %s: %d frames, %d violations recorded", r.runID, r.frameCount, r.violationCount)
	return r.err
}

// Path returns the database file.
func (r *Recorder) Path() string {
	return r.path
}

// RunID returns the unique id of the recorded run.
func (r *Recorder) RunID() string {
	return r.runID
}
