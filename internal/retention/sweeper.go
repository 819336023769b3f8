package retention

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"thumbnailer/internal/domain"
	"thumbnailer/internal/infra"
)

const (
	DefaultMaxAge   = 24 * time.Hour
	DefaultInterval = time.Hour
)

// Options configures a Sweeper.
type Options struct {
	Dirs     []string
	MaxAge   time.Duration
	Interval time.Duration
	Logger   infra.Logger
	Now      func() time.Time
	// Remove deletes one expired file. Defaults to os.Remove.
	Remove func(path string) error
}

// Report summarizes one sweep.
type Report struct {
	Scanned int
	Removed int
	Failed  int
}

func (r *Report) add(o Report) {
	r.Scanned += o.Scanned
	r.Removed += o.Removed
	r.Failed += o.Failed
}

// Sweeper deletes files whose modification time is older than MaxAge from
// a fixed set of directories. Directories are swept independently and a
// failure on one entry never stops the others.
type Sweeper struct {
	dirs     []string
	maxAge   time.Duration
	interval time.Duration
	logger   infra.Logger
	now      func() time.Time
	remove   func(string) error
}

func New(opts Options) *Sweeper {
	s := &Sweeper{
		dirs:     opts.Dirs,
		maxAge:   opts.MaxAge,
		interval: opts.Interval,
		logger:   opts.Logger,
		now:      opts.Now,
		remove:   opts.Remove,
	}
	if s.maxAge <= 0 {
		s.maxAge = DefaultMaxAge
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.remove == nil {
		s.remove = os.Remove
	}
	return s
}

// Start sweeps every Interval in a background goroutine until ctx is done.
// The first sweep happens one Interval after Start.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		s.logger.Info().Dur("interval", s.interval).Dur("max_age", s.maxAge).Msg("retention: sweeper started")
		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("retention: sweeper stopped")
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()
}

// RunOnce performs a single sweep over all directories.
func (s *Sweeper) RunOnce(ctx context.Context) Report {
	reports := make([]Report, len(s.dirs))
	var g errgroup.Group
	for i, dir := range s.dirs {
		i, dir := i, dir
		g.Go(func() error {
			reports[i] = s.sweepDir(ctx, dir)
			return nil
		})
	}
	_ = g.Wait()

	var total Report
	for _, r := range reports {
		total.add(r)
	}
	s.logger.Info().Int("scanned", total.Scanned).Int("removed", total.Removed).Int("failed", total.Failed).Msg("retention: sweep finished")
	return total
}

func (s *Sweeper) sweepDir(ctx context.Context, dir string) (report Report) {
	defer func() {
		if r := recover(); r != nil {
			s.report(&domain.SweepError{Dir: dir, Err: fmt.Errorf("panic: %v", r)})
			report.Failed++
		}
	}()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug().Str("dir", dir).Msg("retention: directory absent, skipping")
			return report
		}
		s.report(&domain.SweepError{Dir: dir, Err: err})
		report.Failed++
		return report
	}

	now := s.now()
	for _, entry := range entries {
		if ctx.Err() != nil {
			return report
		}
		if !entry.Type().IsRegular() {
			continue
		}
		report.Scanned++
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				s.report(&domain.SweepError{Dir: dir, Path: path, Err: err})
				report.Failed++
			}
			continue
		}
		if now.Sub(info.ModTime()) <= s.maxAge {
			continue
		}
		if err := s.remove(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				s.report(&domain.SweepError{Dir: dir, Path: path, Err: err})
				report.Failed++
			}
			continue
		}
		report.Removed++
		s.logger.Info().Str("path", path).Msg("retention: removed expired file")
	}
	return report
}

func (s *Sweeper) report(err *domain.SweepError) {
	s.logger.Error().Err(err).Str("dir", err.Dir).Msg("retention: sweep error")
}
