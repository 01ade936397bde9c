package recorder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/hitdata/internal/dedup"
	"github.com/roach88/hitdata/internal/ir"
	"github.com/roach88/hitdata/internal/schema"
	"github.com/roach88/hitdata/internal/store"
)

// Backend is the subset of the storage engine the recorder writes through.
type Backend interface {
	dedup.Backend
	InsertBatched(ctx context.Context, table string, cols ir.Columns) (int64, store.Batch, error)
	UpdateEntry(ctx context.Context, table string, id int64, cols ir.Columns) error
	Lost(b store.Batch) bool
}

// Options configures a Recorder.
type Options struct {
	// RecordDeviations writes a hit_deviations row for every note hit.
	// When false, deviations are not stored at all.
	RecordDeviations bool

	// BatchSize is passed to the store by Open. Zero means store.DefaultBatchSize.
	BatchSize int

	// Logger receives failure reports. Nil means slog.Default().
	Logger *slog.Logger

	// Clock stamps play_datetime. Nil means the system clock.
	Clock Clock

	// Tokens generates session tokens. Nil means UUIDv7Generator.
	Tokens TokenGenerator
}

// Recorder is the process-scope recording context shared by all sessions.
type Recorder struct {
	backend   Backend
	closer    io.Closer
	noteInfos *dedup.Cache[ir.NoteInfoKey]
	modifiers *dedup.Cache[string]

	recordDeviations bool
	logger           *slog.Logger
	clock            Clock
	tokens           TokenGenerator

	// err is the initialization failure that disabled the recorder.
	err error

	mu       sync.Mutex
	reported bool

	// closedDrops is set once a write has been dropped on a closed store.
	closedDrops bool
}

// Open opens the store at path and returns a recorder over it:
//
//   - missing tables are created, existing ones are left alone
//   - the note and modifier caches are hydrated from the file
//   - the recorder owns the store, so Close commits and closes it
//
// Open never fails. If the store cannot be opened or the caches cannot be
// hydrated, the returned recorder is disabled and Err reports why.
func Open(ctx context.Context, path string, opts Options) *Recorder {
	r := newRecorder(opts)

	s, err := store.Open(ctx, path, schema.HitData(), store.Options{
		BatchSize: opts.BatchSize,
		Logger:    r.logger,
	})
	if err != nil {
		r.disable(fmt.Errorf("open hit database %s: %w", path, err))
		return r
	}
	r.closer = s
	r.attach(ctx, s)
	return r
}

// New returns a recorder over an already opened backend. The caller keeps
// ownership of the backend; Close does not close it.
func New(ctx context.Context, backend Backend, opts Options) *Recorder {
	r := newRecorder(opts)
	r.attach(ctx, backend)
	return r
}

// Disabled returns a recorder that records nothing. err is reported once.
func Disabled(err error, opts Options) *Recorder {
	r := newRecorder(opts)
	r.disable(err)
	return r
}

func newRecorder(opts Options) *Recorder {
	r := &Recorder{
		recordDeviations: opts.RecordDeviations,
		logger:           opts.Logger,
		clock:            opts.Clock,
		tokens:           opts.Tokens,
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.clock == nil {
		r.clock = systemClock{}
	}
	if r.tokens == nil {
		r.tokens = UUIDv7Generator{}
	}
	return r
}

// attach wires the backend and hydrates both caches.
func (r *Recorder) attach(ctx context.Context, backend Backend) {
	r.backend = backend
	r.noteInfos = dedup.NewNoteInfos(backend)
	r.modifiers = dedup.NewModifiers(backend)

	if err := r.noteInfos.Hydrate(ctx); err != nil {
		r.disable(err)
		return
	}
	if err := r.modifiers.Hydrate(ctx); err != nil {
		r.disable(err)
	}
}

func (r *Recorder) disable(err error) {
	r.err = err
	r.reportFailure(r.logger, "hit recording disabled", err)
}

// reportFailure logs the first failure at Error and later ones at Debug.
func (r *Recorder) reportFailure(logger *slog.Logger, msg string, err error) {
	r.mu.Lock()
	first := !r.reported
	r.reported = true
	r.mu.Unlock()

	if first {
		logger.Error(msg, "error", err)
		return
	}
	logger.Debug(msg, "error", err)
}

// reportClosed logs a write dropped because the store is closed. Only the
// first one is logged at Warn; every event after Close hits the same error.
func (r *Recorder) reportClosed(logger *slog.Logger, table string, err error) {
	r.mu.Lock()
	first := !r.closedDrops
	r.closedDrops = true
	r.mu.Unlock()

	level := slog.LevelDebug
	if first {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "dropped hit data write", "table", table, "error", err)
}

// Err returns the initialization failure that disabled the recorder, or nil.
func (r *Recorder) Err() error {
	return r.err
}

// Enabled reports whether the recorder writes anything.
func (r *Recorder) Enabled() bool {
	return r.err == nil
}

// RecordsDeviations reports whether note hits carry a hit_deviations row.
func (r *Recorder) RecordsDeviations() bool {
	return r.recordDeviations
}

// NoteInfos returns the note descriptor cache.
func (r *Recorder) NoteInfos() *dedup.Cache[ir.NoteInfoKey] {
	return r.noteInfos
}

// Modifiers returns the modifier cache.
func (r *Recorder) Modifiers() *dedup.Cache[string] {
	return r.modifiers
}

// Close closes the store if Open created it, committing the open batch.
func (r *Recorder) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}
