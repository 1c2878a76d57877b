// Package report renders a duplicate graph in one of the output modes
// and carries out the delete mode.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/renameio"

	"github.com/bamsammich/twins/internal/dupes"
	"github.com/bamsammich/twins/internal/event"
	"github.com/bamsammich/twins/internal/stats"
)

// Mode selects what is done with the duplicates.
type Mode int

const (
	// Show lists each original followed by its copies.
	Show Mode = iota
	// Delete removes every copy.
	Delete
	// Command prints a shell command line per original that removes its copies.
	Command
	// JSON prints one object mapping originals to their copies.
	JSON
)

var modeNames = [...]string{
	Show:    "show",
	Delete:  "delete",
	Command: "command",
	JSON:    "json",
}

// ErrUnknownMode is returned by ParseMode for an unrecognized name.
var ErrUnknownMode = errors.New("unknown mode")

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode maps a mode name to its Mode. Names are case-insensitive.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return Mode(m), nil
		}
	}
	return Show, fmt.Errorf("%w %q (valid: %s)", ErrUnknownMode, s, strings.Join(ModeNames(), ", "))
}

// ModeNames returns every mode name, default first.
func ModeNames() []string {
	return modeNames[:]
}

// Options controls Write.
type Options struct {
	Out    io.Writer
	Events chan<- event.Event
	Stats  *stats.Collector

	// DeleteCommand is the command prefix for Command mode, split with
	// shell rules. Empty means DefaultDeleteCommand.
	DeleteCommand string

	Mode   Mode
	DryRun bool // Delete mode: report what would be removed, remove nothing
}

// Outcome summarizes a Write.
type Outcome struct {
	Failed  []Failure
	Deleted int
}

// Failure is a copy that could not be removed.
type Failure struct {
	Err  error
	Path string
}

// Write produces the output for opts.Mode. In Delete mode a failed
// removal is recorded in the outcome and the remaining copies are still
// processed; the returned error is reserved for write failures on
// opts.Out, a bad option or a canceled context.
func Write(ctx context.Context, opts Options, g *dupes.Graph) (Outcome, error) {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	switch opts.Mode {
	case Show:
		return Outcome{}, writeShow(opts.Out, g)
	case Delete:
		return deleteCopies(ctx, opts, g)
	case Command:
		return Outcome{}, writeCommands(opts.Out, opts.DeleteCommand, g)
	case JSON:
		return Outcome{}, writeJSON(opts.Out, g)
	default:
		return Outcome{}, fmt.Errorf("%w: %s", ErrUnknownMode, opts.Mode)
	}
}

// WriteFile runs Write into the file at path. The file is replaced
// atomically once the whole report is rendered, so readers never see a
// partial report. Nothing is written when Write fails.
func WriteFile(ctx context.Context, path string, opts Options, g *dupes.Graph) (Outcome, error) {
	var buf bytes.Buffer
	opts.Out = &buf
	out, err := Write(ctx, opts, g)
	if err != nil {
		return out, err
	}
	if err := renameio.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return out, fmt.Errorf("write report %s: %w", path, err)
	}
	return out, nil
}
