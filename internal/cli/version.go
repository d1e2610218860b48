package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Set via -ldflags at build time.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		commit, built := buildStamp()
		fmt.Fprintf(cmd.OutOrStdout(), "bananimon %s (commit: %s, built: %s)\n", Version, commit, built)
	},
}

// buildStamp prefers the ldflags values and falls back to the VCS stamp
// `go build` records.
func buildStamp() (commit, built string) {
	commit, built = Commit, BuildDate
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return commit, built
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "unknown" && len(s.Value) >= 7 {
				commit = s.Value[:7]
			}
		case "vcs.time":
			if built == "unknown" {
				built = s.Value
			}
		}
	}
	return commit, built
}

// VersionString is the version reported by the health endpoint.
func VersionString() string {
	commit, _ := buildStamp()
	return fmt.Sprintf("%s (%s)", Version, commit)
}
