package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Runner executes one firing of a saved search.
type Runner interface {
	RunSaved(ctx context.Context, s SavedSearch) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, s SavedSearch) error

// RunSaved calls f.
func (f RunnerFunc) RunSaved(ctx context.Context, s SavedSearch) error { return f(ctx, s) }

// Scheduler wraps robfig/cron and fires saved searches. A search still
// running when its next tick arrives is skipped for that tick.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner

	mu      sync.Mutex
	entries map[string]cron.EntryID
	ctx     context.Context
}

// New creates a Scheduler that hands each firing to runner.
func New(runner Runner) *Scheduler {
	logger := zapLogger{zap.L().Named("cron")}
	return &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		runner:  runner,
		entries: make(map[string]cron.EntryID),
		ctx:     context.Background(),
	}
}

// Add registers s, replacing any search with the same name.
func (s *Scheduler) Add(search SavedSearch) error {
	if err := search.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.entries[search.Name]; ok {
		s.cron.Remove(id)
		delete(s.entries, search.Name)
	}

	id, err := s.cron.AddFunc(search.Schedule, func() { s.fire(search) })
	if err != nil {
		return eris.Wrapf(err, "schedule: add %s", search.Name)
	}
	s.entries[search.Name] = id

	zap.L().Info("schedule: registered search",
		zap.String("name", search.Name),
		zap.String("schedule", search.Schedule),
		zap.Time("next", s.cron.Entry(id).Next),
	)
	return nil
}

// Remove unregisters the named search. It reports whether it existed.
func (s *Scheduler) Remove(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.entries[name]
	if ok {
		s.cron.Remove(id)
		delete(s.entries, name)
	}
	return ok
}

// Names returns the registered search names.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// Next returns the next firing time of the named search.
func (s *Scheduler) Next(name string) (time.Time, bool) {
	s.mu.Lock()
	id, ok := s.entries[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Next, true
}

// Start begins firing searches. Runs receive ctx.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	zap.L().Info("schedule: started", zap.Int("searches", len(s.Names())))
}

// Stop halts the scheduler and waits for running searches until ctx ends.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		zap.L().Info("schedule: stopped")
		return nil
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "schedule: stop")
	}
}

// RunNow fires the named search synchronously.
func (s *Scheduler) RunNow(ctx context.Context, search SavedSearch) error {
	return s.run(ctx, search)
}

func (s *Scheduler) fire(search SavedSearch) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if err := s.run(ctx, search); err != nil {
		zap.L().Error("schedule: search failed", zap.String("name", search.Name), zap.Error(err))
	}
}

func (s *Scheduler) run(ctx context.Context, search SavedSearch) error {
	start := time.Now()
	zap.L().Info("schedule: firing search", zap.String("name", search.Name))

	if err := s.runner.RunSaved(ctx, search); err != nil {
		return eris.Wrapf(err, "schedule: run %s", search.Name)
	}

	zap.L().Info("schedule: search complete",
		zap.String("name", search.Name),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// zapLogger adapts zap to cron.Logger.
type zapLogger struct {
	l *zap.Logger
}

func (z zapLogger) Info(msg string, keysAndValues ...any) {
	z.l.Sugar().Debugw(msg, keysAndValues...)
}

func (z zapLogger) Error(err error, msg string, keysAndValues ...any) {
	z.l.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
