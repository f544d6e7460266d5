package main

import (
	"github.com/spf13/cobra"

	"github.com/kk-code-lab/rscan/internal/engine"
)

var lsCmd = &cobra.Command{
	Use:   "ls [root]",
	Short: "List a directory, streaming large listings in chunks",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLs,
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	root, err := rootArg(args, 0)
	if err != nil {
		return err
	}
	out := newPrinter(cmd.OutOrStdout(), flagJSON)

	_, err = runOperation(cmd,
		func(eng *engine.Engine) (uint64, error) {
			resp, err := eng.StartEnumeration(root)
			if err != nil {
				return 0, err
			}
			if out.json {
				out.value(resp)
			} else {
				for _, entry := range resp.Entries {
					out.entry(entry)
				}
			}
			return resp.OperationID, out.err
		},
		func(ev engine.Event) error {
			if out.json {
				return out.event(ev)
			}
			for _, entry := range ev.Entries {
				out.entry(entry)
			}
			return out.err
		},
	)
	if err != nil {
		return err
	}
	return out.err
}
