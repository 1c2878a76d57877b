package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var docsCmd = &cobra.Command{
	Use:    "gen-docs",
	Short:  "Generate the twins man page or reference docs",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE:   runGenDocs,
}

func init() {
	docsCmd.Flags().String("dir", "docs", "output directory")
	docsCmd.Flags().String("format", "man", "output format: man, markdown, rest or yaml")
}

func runGenDocs(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")       //nolint:errcheck // flag name is hardcoded
	format, _ := cmd.Flags().GetString("format") //nolint:errcheck // flag name is hardcoded

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	root := cmd.Root()
	// Generated files carry no timestamp footer so rebuilds are byte-identical.
	root.DisableAutoGenTag = true

	switch format {
	case "man":
		date, err := sourceDate()
		if err != nil {
			return err
		}
		header := &doc.GenManHeader{
			Title:   "TWINS",
			Section: "1",
			Source:  "twins " + version,
			Manual:  "User Commands",
			Date:    &date,
		}
		return doc.GenManTree(root, header, dir)
	case "markdown":
		return doc.GenMarkdownTree(root, dir)
	case "rest":
		return doc.GenReSTTree(root, dir)
	case "yaml":
		return doc.GenYamlTree(root, dir)
	default:
		return fmt.Errorf("unknown format %q (use man, markdown, rest or yaml)", format)
	}
}

// sourceDate honors SOURCE_DATE_EPOCH for reproducible man pages.
func sourceDate() (time.Time, error) {
	epoch := os.Getenv("SOURCE_DATE_EPOCH")
	if epoch == "" {
		return time.Now().UTC(), nil
	}
	sec, err := strconv.ParseInt(epoch, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid SOURCE_DATE_EPOCH %q: %w", epoch, err)
	}
	return time.Unix(sec, 0).UTC(), nil
}
