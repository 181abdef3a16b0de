package cli

import (
	"context"
	"log/slog"

	"github.com/freqmod/gitfx/internal/submodule"
	"github.com/spf13/cobra"
)

func newSubmodsyncCmd(g *globalFlags) *cobra.Command {
	var (
		forceCommit bool
		dirtyCheck  string
	)

	cmd := &cobra.Command{
		Use:   "submodsync",
		Short: "Check out the recorded commit in every submodule, refusing to touch local changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.setup(cmd)
			if err != nil {
				return err
			}

			opts := submodule.Options{
				ForceCommit: cfg.Submodsync.ForceCommit,
				Dirty:       cfg.DirtyPolicy(),
			}

			flags := cmd.Flags()
			if flags.Changed("force-commit") {
				opts.ForceCommit = forceCommit
			}
			if flags.Changed("dirty-check") {
				if opts.Dirty, err = submodule.ParseDirtyPolicy(dirtyCheck); err != nil {
					return err
				}
			}

			repo, err := g.open()
			if err != nil {
				return err
			}
			return runSubmodsync(cmd.Context(), submodule.FromGoGit(repo.Repo), opts, logger)
		},
	}

	cmd.Flags().BoolVar(&forceCommit, "force-commit", false, "check out the recorded commit even if the submodule has moved to another one")
	cmd.Flags().StringVar(&dirtyCheck, "dirty-check", string(submodule.DirtyAgainstHead), "what counts as local changes: head (staged or unstaged) or index (unstaged only)")
	return cmd
}

func runSubmodsync(ctx context.Context, repo submodule.Repository, opts submodule.Options, logger *slog.Logger) error {
	return submodule.NewEngine(opts, logger).Sync(ctx, repo)
}
