package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/kk-code-lab/rscan/internal/engine"
	"github.com/kk-code-lab/rscan/internal/search"
)

var flagFindLimit int

var findCmd = &cobra.Command{
	Use:   "find <query> [root]",
	Short: "Fuzzy-search file and directory names",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runFind,
}

func init() {
	findCmd.Flags().IntVarP(&flagFindLimit, "limit", "n", 20, "Number of results to show (1-100)")
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	root, err := rootArg(args, 1)
	if err != nil {
		return err
	}
	query := args[0]
	out := newPrinter(cmd.OutOrStdout(), flagJSON)

	var best []search.NameResult
	cancelled, err := runOperation(cmd,
		func(eng *engine.Engine) (uint64, error) {
			return eng.StartNameSearch(query, root, flagFindLimit)
		},
		func(ev engine.Event) error {
			if out.json {
				return out.event(ev)
			}
			best = ev.Names
			return nil
		},
	)
	if err != nil {
		return err
	}
	if out.json {
		return nil
	}

	for _, r := range best {
		out.nameResult(r)
	}
	if cancelled {
		out.note("interrupted; showing best matches so far")
	} else if len(best) == 0 {
		out.note("no matches for " + strings.TrimSpace(query))
	}
	return out.err
}
