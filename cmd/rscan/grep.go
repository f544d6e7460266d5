package main

import (
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/rscan/internal/engine"
)

var (
	flagGrepCaseSensitive bool
	flagGrepRegex         bool
	flagGrepMaxResults    int
	flagGrepColor         bool
	flagGrepWidth         int
)

var grepCmd = &cobra.Command{
	Use:   "grep <pattern> [root]",
	Short: "Search file contents",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runGrep,
}

func init() {
	f := grepCmd.Flags()
	f.BoolVarP(&flagGrepCaseSensitive, "case-sensitive", "s", false, "Match case exactly")
	f.BoolVarP(&flagGrepRegex, "regex", "e", false, "Treat the pattern as a regular expression")
	f.IntVarP(&flagGrepMaxResults, "max-results", "m", 0, "Stop after this many matches (default from config)")
	f.BoolVar(&flagGrepColor, "color", false, "Highlight matches with ANSI colors")
	f.IntVar(&flagGrepWidth, "width", 160, "Clip previews to this many columns (0 disables)")
	rootCmd.AddCommand(grepCmd)
}

func runGrep(cmd *cobra.Command, args []string) error {
	root, err := rootArg(args, 1)
	if err != nil {
		return err
	}
	out := newPrinter(cmd.OutOrStdout(), flagJSON)
	out.width = flagGrepWidth
	out.color = flagGrepColor

	var files, matches uint64
	cancelled, err := runOperation(cmd,
		func(eng *engine.Engine) (uint64, error) {
			maxResults := flagGrepMaxResults
			if maxResults <= 0 {
				maxResults = eng.Config().Content.MaxResults
			}
			return eng.StartContentSearch(engine.ContentSearchRequest{
				Query:         args[0],
				Root:          root,
				CaseSensitive: flagGrepCaseSensitive,
				RegexMode:     flagGrepRegex,
				MaxResults:    maxResults,
			})
		},
		func(ev engine.Event) error {
			if out.json {
				return out.event(ev)
			}
			for _, r := range ev.Files {
				out.contentResult(r)
			}
			files, matches = ev.Counters.FilesSearched, ev.Counters.TotalMatches
			return out.err
		},
	)
	if err != nil {
		return err
	}
	if !out.json {
		if cancelled {
			out.note("interrupted")
		}
		out.summary(files, matches)
	}
	return out.err
}
