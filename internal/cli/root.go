// Package cli wires the gitfx commands to cobra.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/freqmod/gitfx/internal/config"
	"github.com/freqmod/gitfx/internal/git"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// stdinIsTerminal decides whether logrefs may prompt.
var stdinIsTerminal = func() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	workDir    string
	gitDir     string
	configFile string
	logLevel   string
	logFormat  string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "gitfx",
		Short:         "Reflog-ranked ref switching and safe submodule sync",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&g.workDir, "work-dir", "", "work tree, or where to start looking for a repository (default: current directory)")
	pf.StringVar(&g.gitDir, "git-dir", "", "repository directory, disables discovery (default: $GIT_DIR)")
	pf.StringVar(&g.configFile, "config", "", "config file (default: $GITFX_CONFIG or $XDG_CONFIG_HOME/gitfx/config.yaml)")
	pf.StringVar(&g.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.StringVar(&g.logFormat, "log-format", "text", "log format (text, json)")

	root.AddCommand(newLogrefsCmd(g))
	root.AddCommand(newSubmodsyncCmd(g))
	root.AddCommand(versionCmd())
	return root
}

// Execute runs the command line and reports a failure on stderr.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(root.ErrOrStderr(), Error("error: "+err.Error()))
		return err
	}
	return nil
}

// setup loads the configuration, applies explicitly set global flags and
// creates the logger.
func (g *globalFlags) setup(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(g.configFile)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = g.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = g.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	logger, err := setupLogger(cmd.ErrOrStderr(), cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func (g *globalFlags) open() (*git.Repository, error) {
	return git.Open(git.OptionsFromEnv(git.OpenOptions{WorkDir: g.workDir, GitDir: g.gitDir}))
}
