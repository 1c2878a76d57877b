package report

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bamsammich/twins/internal/dupes"
	"github.com/bamsammich/twins/internal/event"
)

// deleteCopies removes every copy in g and reports one line per file on
// opts.Out. Originals are never touched.
func deleteCopies(ctx context.Context, opts Options, g *dupes.Graph) (Outcome, error) {
	var out Outcome
	w := opts.Out

	for _, grp := range g.Groups() {
		for _, path := range grp.Copies {
			if err := ctx.Err(); err != nil {
				return out, err
			}

			if opts.DryRun {
				event.Emit(opts.Events, event.Event{Type: event.DeleteFile, Path: path, Original: grp.Original, Size: grp.Size})
				if _, err := fmt.Fprintf(w, "would delete %s\n", path); err != nil {
					return out, err
				}
				out.Deleted++
				continue
			}

			err := os.Remove(path)
			if errors.Is(err, fs.ErrNotExist) {
				slog.Debug("copy already gone", "path", path)
				err = nil
			}
			if err != nil {
				err = &dupes.FileError{Op: "delete", Path: path, Err: err}
				out.Failed = append(out.Failed, Failure{Path: path, Err: err})
				if opts.Stats != nil {
					opts.Stats.AddDeleteFailed(1)
				}
				slog.Warn("delete failed", "path", path, "error", err)
				event.Emit(opts.Events, event.Event{Type: event.DeleteFailed, Path: path, Original: grp.Original, Size: grp.Size, Error: err})
				if _, werr := fmt.Fprintf(w, "failed %s: %v\n", path, err); werr != nil {
					return out, werr
				}
				continue
			}

			out.Deleted++
			if opts.Stats != nil {
				opts.Stats.AddFilesDeleted(1)
			}
			event.Emit(opts.Events, event.Event{Type: event.DeleteFile, Path: path, Original: grp.Original, Size: grp.Size})
			if _, err := fmt.Fprintf(w, "deleted %s\n", path); err != nil {
				return out, err
			}
		}
	}
	return out, nil
}
