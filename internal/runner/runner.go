// Package runner fires the activations of a crontab.Schedule in real time.
//
// Timing is delegated to robfig/cron: the whole Schedule is registered as a
// single cron.Schedule whose next activation is the earliest next activation
// of any of its entries. When the activation comes, the entries matching
// that minute are handed to the Fire callback together with their
// parameters. If the Schedule came from a file, the file is watched and the
// Schedule replaced whenever it changes and still parses.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/cespare/crontab"
	"github.com/cespare/crontab/pkg/logx"
)

// Fire is called for every activation with the entries that match it.
type Fire func(at time.Time, entries []*crontab.Entry)

// Loader produces a fresh Schedule, typically by re-reading a file.
type Loader func() (*crontab.Schedule, error)

type Config struct {
	// Path is watched for changes when set; Load is called to re-parse it.
	Path string
	Load Loader
	Fire Fire
	Log  logx.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

type Runner struct {
	cfg Config
	log logx.Logger

	mu    sync.RWMutex
	sched *crontab.Schedule
	c     *cron.Cron
	id    cron.EntryID
}

// New loads the initial Schedule. It fails if that Schedule does not parse.
func New(cfg Config) (*Runner, error) {
	if cfg.Load == nil {
		return nil, fmt.Errorf("runner: a loader is required")
	}
	if cfg.Fire == nil {
		cfg.Fire = func(time.Time, []*crontab.Entry) {}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log := cfg.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	sched, err := cfg.Load()
	if err != nil {
		return nil, err
	}
	r := &Runner{cfg: cfg, log: log, sched: sched}
	cl := cronLogger{log: log}
	r.c = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl)),
	)
	r.id = r.c.Schedule(activation{sched}, cron.FuncJob(r.fire))
	return r, nil
}

// Schedule returns the Schedule currently in effect.
func (r *Runner) Schedule() *crontab.Schedule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sched
}

// Next reports when the runner fires next.
func (r *Runner) Next() (time.Time, bool) {
	return r.Schedule().Next(r.cfg.Now())
}

// Reload calls the loader and swaps in the new Schedule. On error the
// current Schedule stays in effect.
func (r *Runner) Reload() error {
	sched, err := r.cfg.Load()
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.sched = sched
	r.c.Remove(r.id)
	r.id = r.c.Schedule(activation{sched}, cron.FuncJob(r.fire))
	r.mu.Unlock()
	r.log.Info("schedule reloaded", logx.Int("entries", sched.Len()))
	if w := sched.SanityWarning(); w != "" {
		r.log.Warn("schedule looks suspicious", logx.String("warning", w))
	}
	return nil
}

// Run fires activations until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	var events <-chan fsnotify.Event
	var errs <-chan error
	if r.cfg.Path != "" {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("runner: watch %s: %w", r.cfg.Path, err)
		}
		defer w.Close()
		// Watch the directory: editors often replace the file instead of
		// writing it in place.
		if err := w.Add(filepath.Dir(r.cfg.Path)); err != nil {
			return fmt.Errorf("runner: watch %s: %w", r.cfg.Path, err)
		}
		events, errs = w.Events, w.Errors
	}

	r.c.Start()
	r.log.Info("runner started", logx.Int("entries", r.Schedule().Len()))
	if next, ok := r.Next(); ok {
		r.log.Info("next activation", logx.Time("at", next))
	}

	for {
		select {
		case <-ctx.Done():
			stopCtx := r.c.Stop()
			<-stopCtx.Done()
			r.log.Info("runner stopped")
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if !r.concerns(ev) {
				continue
			}
			r.log.Debug("spec file changed", logx.String("op", ev.Op.String()))
			if err := r.Reload(); err != nil {
				r.log.Warn("reload failed; keeping the previous schedule", logx.Err(err))
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			r.log.Warn("watch error", logx.Err(err))
		}
	}
}

func (r *Runner) concerns(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != filepath.Clean(r.cfg.Path) {
		return false
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return false
	}
	// A removed file is not worth a reload attempt.
	_, err := os.Stat(r.cfg.Path)
	return err == nil
}

func (r *Runner) fire() {
	r.fireAt(r.cfg.Now())
}

func (r *Runner) fireAt(at time.Time) {
	sched := r.Schedule()
	entries := sched.Matching(at)
	if len(entries) == 0 {
		r.log.Debug("woke up without a matching entry", logx.Time("at", at))
		return
	}
	r.cfg.Fire(at, entries)
}

// activation adapts a crontab.Schedule to cron.Schedule.
type activation struct {
	s *crontab.Schedule
}

// Next returns the zero time when the schedule never fires again, which
// robfig/cron treats as "never".
func (a activation) Next(t time.Time) time.Time {
	next, ok := a.s.Next(t)
	if !ok {
		return time.Time{}
	}
	return next
}

// cronLogger routes robfig/cron's logging into logx.
type cronLogger struct {
	log logx.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, kvFields(keysAndValues)...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append(kvFields(keysAndValues), logx.Err(err))...)
}

func kvFields(kv []interface{}) []logx.Field {
	fields := make([]logx.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logx.Any(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
