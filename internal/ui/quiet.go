package ui

import "github.com/bamsammich/twins/internal/stats"

// quietPresenter consumes events but produces no output.
type quietPresenter struct {
	stats stats.Reader
}

func (p *quietPresenter) Run(events <-chan Event) error {
	for range events {
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	return ""
}
