package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// buildInfo describes the binary; cmd/gitfx fills it from -ldflags values.
type buildInfo struct {
	Version string
	Commit  string
	Date    string
}

func (b buildInfo) String() string {
	return fmt.Sprintf("gitfx %s (commit: %s, built: %s)", b.Version, b.Commit, b.Date)
}

var build = buildInfo{Version: "dev", Commit: "none", Date: "unknown"}

// SetVersionInfo records the build metadata printed by the version command.
func SetVersionInfo(version, commit, date string) {
	build = buildInfo{Version: version, Commit: commit, Date: date}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the gitfx version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), build)
			return err
		},
	}
}
