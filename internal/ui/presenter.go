// Package ui shows run progress on stderr. Stdout belongs to the report.
package ui

import (
	"io"
	"time"

	"github.com/bamsammich/twins/internal/stats"
)

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer     io.Writer // progress output, normally stderr
	Stats      stats.ReadTicker
	Interval   time.Duration // progress period; 0 picks a default per presenter
	IsTTY      bool
	Quiet      bool
	Verbose    bool
	NoProgress bool
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{stats: cfg.Stats}
	}
	if cfg.IsTTY && !cfg.NoProgress {
		return newLivePresenter(cfg)
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &plainPresenter{
		w:          cfg.Writer,
		stats:      cfg.Stats,
		interval:   interval,
		verbose:    cfg.Verbose,
		noProgress: cfg.NoProgress,
	}
}
