package ui

import (
	"fmt"
	"strings"

	"github.com/bamsammich/twins/internal/stats"
)

// CompletionSummary builds the final summary line from a snapshot.
// Format: done ✓  files 48,917  duplicates 312  reclaimable 2.1 GiB  hashed 3.4 GiB  time 17s
func CompletionSummary(snap stats.Snapshot) string {
	icon := "✓"
	if snap.FilesSkipped > 0 || snap.DeleteFailed > 0 {
		icon = "✗"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "done %s  files %s  duplicates %s  reclaimable %s  hashed %s  time %s",
		icon,
		FormatCount(snap.FilesScanned),
		FormatCount(snap.Duplicates),
		FormatBytes(snap.BytesReclaimable),
		FormatBytes(snap.BytesHashed),
		FormatDuration(snap.Elapsed),
	)
	if snap.FilesDeleted > 0 || snap.DeleteFailed > 0 {
		fmt.Fprintf(&b, "  deleted %s", FormatCount(snap.FilesDeleted))
	}
	if snap.FilesSkipped > 0 {
		fmt.Fprintf(&b, "  skipped %s", FormatCount(snap.FilesSkipped))
	}
	if snap.DeleteFailed > 0 {
		fmt.Fprintf(&b, "  delete errors %s", FormatCount(snap.DeleteFailed))
	}
	return b.String()
}
