package cli

import (
	"fmt"
	"log/slog"

	"github.com/freqmod/gitfx/internal/config"
	"github.com/freqmod/gitfx/internal/git"
	"github.com/freqmod/gitfx/internal/logrefs"
	"github.com/spf13/cobra"
)

func newLogrefsCmd(g *globalFlags) *cobra.Command {
	var (
		index        int
		maxPrintRefs int
		remotes      bool
		tags         bool
	)

	cmd := &cobra.Command{
		Use:   "logrefs",
		Short: "List references by most recent reflog activity and check one out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup(cmd)
			if err != nil {
				return err
			}

			opts := logrefs.Options{
				Filter: logrefs.Filter{
					IncludeRemotes: cfg.Logrefs.Remotes,
					IncludeTags:    cfg.Logrefs.Tags,
				},
				MaxPrintRefs: cfg.Logrefs.MaxPrintRefs,
			}

			flags := cmd.Flags()
			if flags.Changed("index") {
				opts.Index = &index
			}
			if flags.Changed("max-print-refs") {
				if maxPrintRefs < 0 {
					return fmt.Errorf("--max-print-refs must not be negative: %d", maxPrintRefs)
				}
				opts.MaxPrintRefs = maxPrintRefs
			}
			if flags.Changed("remotes") {
				opts.IncludeRemotes = remotes
			}
			if flags.Changed("tags") {
				opts.IncludeTags = tags
			}

			repo, err := g.open()
			if err != nil {
				return err
			}

			var prompt logrefs.PromptFunc
			if opts.Index == nil && stdinIsTerminal() {
				prompt = NewPromptFunc()
			}
			return runLogrefs(cmd, repo, opts, prompt, logger)
		},
	}

	cmd.Flags().IntVarP(&index, "index", "i", 0, "check out the entry at this position instead of prompting")
	cmd.Flags().IntVar(&maxPrintRefs, "max-print-refs", config.DefaultConfig().Logrefs.MaxPrintRefs, "maximum number of entries to print")
	cmd.Flags().BoolVar(&remotes, "remotes", false, "include remote-tracking branches")
	cmd.Flags().BoolVar(&tags, "tags", false, "include tags")
	return cmd
}

func runLogrefs(cmd *cobra.Command, repo *git.Repository, opts logrefs.Options, prompt logrefs.PromptFunc, logger *slog.Logger) error {
	r := &logrefs.Runner{
		Repo:      repo,
		Out:       cmd.OutOrStdout(),
		Prompt:    prompt,
		Highlight: Primary,
		Logger:    logger,
	}
	return r.Run(opts)
}
