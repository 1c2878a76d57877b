package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/twins/internal/stats"
)

// plainPresenter writes line-oriented progress, suitable for logs and
// pipes.
type plainPresenter struct {
	w          io.Writer
	stats      stats.ReadTicker
	interval   time.Duration
	verbose    bool
	noProgress bool

	groupsDone int64
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			if !p.noProgress {
				p.printProgress()
			}
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case ScanComplete:
		snap := p.stats.Snapshot()
		fmt.Fprintf(p.w, "scanned %s files (%s), %s candidates in %s size groups\n",
			FormatCount(ev.Total), FormatBytes(ev.TotalSize),
			FormatCount(snap.Candidates), FormatCount(snap.Groups))
	case GroupStarted:
		p.groupsDone++
	case DuplicateFound:
		if p.verbose {
			fmt.Fprintf(p.w, "duplicate: %s = %s\n", ev.Path, ev.Original)
		}
	case FileSkipped:
		if p.verbose {
			fmt.Fprintf(p.w, "skipped: %s\n", ev.Path)
		}
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	if snap.Groups == 0 {
		fmt.Fprintf(p.w, "progress: scanning %s files %s\n",
			FormatCount(snap.FilesScanned), FormatBytes(snap.BytesScanned))
		return
	}
	fmt.Fprintf(p.w, "progress: group %s/%s hashed %s duplicates %s\n",
		FormatCount(p.groupsDone), FormatCount(snap.Groups),
		FormatBytes(snap.BytesHashed), FormatCount(snap.Duplicates))
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
