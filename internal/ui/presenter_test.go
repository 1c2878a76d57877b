package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bamsammich/twins/internal/event"
	"github.com/bamsammich/twins/internal/stats"
)

type snapshot = stats.Snapshot

// fixedStats serves a fixed snapshot.
type fixedStats struct {
	snap  stats.Snapshot
	ticks int
}

func (f *fixedStats) Snapshot() stats.Snapshot { return f.snap }
func (f *fixedStats) Tick()                    { f.ticks++ }
func (f *fixedStats) RollingSpeed(int) float64 { return 0 }

func stats0(edit func(*snapshot)) stats.Snapshot {
	var s stats.Snapshot
	edit(&s)
	return s
}

func TestNewPresenterSelection(t *testing.T) {
	collector := stats.NewCollector()

	_, ok := NewPresenter(Config{Stats: collector, Quiet: true, IsTTY: true}).(*quietPresenter)
	assert.True(t, ok, "quiet wins")

	_, ok = NewPresenter(Config{Stats: collector, IsTTY: true}).(*livePresenter)
	assert.True(t, ok, "tty gets the live line")

	_, ok = NewPresenter(Config{Stats: collector, IsTTY: true, NoProgress: true}).(*plainPresenter)
	assert.True(t, ok)

	_, ok = NewPresenter(Config{Stats: collector}).(*plainPresenter)
	assert.True(t, ok)
}

func TestQuietPresenter(t *testing.T) {
	p := NewPresenter(Config{Stats: stats.NewCollector(), Quiet: true})
	events := make(chan Event, 2)
	events <- Event{Type: event.DuplicateFound, Path: "/b"}
	close(events)

	require.NoError(t, p.Run(events))
	assert.Empty(t, p.Summary())
}

func TestPlainPresenterScanComplete(t *testing.T) {
	var out bytes.Buffer
	st := &fixedStats{snap: stats0(func(s *snapshot) { s.Candidates = 1200; s.Groups = 30 })}
	p := &plainPresenter{w: &out, stats: st, interval: time.Hour}

	events := make(chan Event, 2)
	events <- Event{Type: event.ScanComplete, Total: 4000, TotalSize: 2048}
	close(events)

	require.NoError(t, p.Run(events))
	assert.Equal(t, "scanned 4,000 files (2.0 KiB), 1,200 candidates in 30 size groups\n", out.String())
}

func TestPlainPresenterVerbose(t *testing.T) {
	var out bytes.Buffer
	p := &plainPresenter{w: &out, stats: &fixedStats{}, interval: time.Hour, verbose: true}

	events := make(chan Event, 4)
	events <- Event{Type: event.DuplicateFound, Path: "/b", Original: "/a"}
	events <- Event{Type: event.FileSkipped, Path: "/c"}
	close(events)

	require.NoError(t, p.Run(events))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.Equal(t, []string{"duplicate: /b = /a", "skipped: /c"}, lines)
}

func TestPlainPresenterSilentByDefault(t *testing.T) {
	var out bytes.Buffer
	p := &plainPresenter{w: &out, stats: &fixedStats{}, interval: time.Hour}

	events := make(chan Event, 4)
	events <- Event{Type: event.GroupStarted, Total: 2}
	events <- Event{Type: event.DuplicateFound, Path: "/b", Original: "/a"}
	close(events)

	require.NoError(t, p.Run(events))
	assert.Empty(t, out.String())
	assert.Equal(t, int64(1), p.groupsDone)
}

func TestPlainPresenterProgress(t *testing.T) {
	var out bytes.Buffer
	st := &fixedStats{snap: stats0(func(s *snapshot) { s.FilesScanned = 10; s.BytesScanned = 100 })}
	p := &plainPresenter{w: &out, stats: st}

	p.printProgress()
	assert.Equal(t, "progress: scanning 10 files 100 B\n", out.String())

	out.Reset()
	st.snap.Groups = 4
	st.snap.Duplicates = 3
	p.groupsDone = 2
	p.printProgress()
	assert.Equal(t, "progress: group 2/4 hashed 0 B duplicates 3\n", out.String())
}

func TestLivePresenter(t *testing.T) {
	var out bytes.Buffer
	st := &fixedStats{snap: stats0(func(s *snapshot) { s.Groups = 2; s.Duplicates = 1 })}
	p := &livePresenter{w: &out, stats: st, interval: time.Hour, width: func() int { return 200 }}

	p.handleEvent(Event{Type: event.GroupStarted})
	p.handleEvent(Event{Type: event.DuplicateFound, Path: "/dup/file"})
	p.draw()

	line := out.String()
	assert.True(t, strings.HasPrefix(line, clearLine))
	assert.Contains(t, line, "1/2 groups")
	assert.Contains(t, line, "duplicates 1")
	assert.Contains(t, line, "/dup/file")

	out.Reset()
	events := make(chan Event)
	close(events)
	require.NoError(t, p.Run(events))
	assert.Equal(t, clearLine, out.String(), "status line is cleared on exit")
}

func TestLivePresenterTruncates(t *testing.T) {
	var out bytes.Buffer
	st := &fixedStats{snap: stats0(func(s *snapshot) { s.FilesScanned = 123456 })}
	p := &livePresenter{w: &out, stats: st, width: func() int { return 20 }}

	p.draw()
	drawn := strings.TrimPrefix(out.String(), clearLine)
	assert.Equal(t, 19, len([]rune(drawn)))
}

func TestPresenterSummary(t *testing.T) {
	collector := stats.NewCollector()
	collector.AddFilesScanned(100)
	collector.AddDuplicates(7)

	p := &plainPresenter{stats: collector}
	s := p.Summary()
	assert.Contains(t, s, "files 100")
	assert.Contains(t, s, "duplicates 7")
}
