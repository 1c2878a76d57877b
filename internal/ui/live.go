package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/twins/internal/stats"
)

// clearLine returns the cursor to column 0 and erases the line.
const clearLine = "\r\x1b[2K"

// livePresenter keeps a single status line on a terminal up to date.
type livePresenter struct {
	w        io.Writer
	stats    stats.ReadTicker
	interval time.Duration
	width    func() int

	groupsDone int64
	current    string // path of the copy being reported, if any
	drawn      bool
}

func newLivePresenter(cfg Config) *livePresenter {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &livePresenter{
		w:        cfg.Writer,
		stats:    cfg.Stats,
		interval: interval,
		width:    func() int { return TermWidth(StderrFd()) },
	}
}

func (p *livePresenter) Run(events <-chan Event) error {
	redraw := time.NewTicker(p.interval)
	defer redraw.Stop()
	second := time.NewTicker(time.Second)
	defer second.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clear()
				return nil
			}
			p.handleEvent(ev)
		case <-second.C:
			p.stats.Tick()
		case <-redraw.C:
			p.draw()
		}
	}
}

func (p *livePresenter) handleEvent(ev Event) {
	switch ev.Type {
	case GroupStarted:
		p.groupsDone++
	case DuplicateFound:
		p.current = ev.Path
	case FileSkipped:
		// Skip warnings come through the logger; keep them off the status line.
		p.clear()
	}
}

func (p *livePresenter) status() string {
	snap := p.stats.Snapshot()
	if snap.Groups == 0 {
		return fmt.Sprintf("scanning  %s files  %s",
			FormatCount(snap.FilesScanned), FormatBytes(snap.BytesScanned))
	}
	line := fmt.Sprintf("%s %s/%s groups  %s  %s  duplicates %s",
		ProgressBar(p.groupsDone, snap.Groups, 20),
		FormatCount(p.groupsDone), FormatCount(snap.Groups),
		FormatBytes(snap.BytesHashed),
		FormatRate(p.stats.RollingSpeed(5)),
		FormatCount(snap.Duplicates))
	if p.current != "" {
		line += "  " + p.current
	}
	return line
}

func (p *livePresenter) draw() {
	fmt.Fprint(p.w, clearLine+Truncate(p.status(), p.width()-1))
	p.drawn = true
}

func (p *livePresenter) clear() {
	if p.drawn {
		fmt.Fprint(p.w, clearLine)
		p.drawn = false
	}
}

func (p *livePresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
