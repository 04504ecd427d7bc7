package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X github.com/fzft/bucketmap/cmd.gitSHA1=...".
var (
	Version   = "0.1.0"
	gitSHA1   = "unknown"
	gitDirty  = "unknown"
	buildID   = "unknown"
	buildDate = "unknown"
)

func versionString() string {
	v := "bucketmap " + Version
	// Add git commit and working tree status when available
	if gitSHA1 != "unknown" && strings.Trim(gitSHA1, "0") != "" {
		v = fmt.Sprintf("%s (git:%s", v, gitSHA1)
		if dirty, err := strconv.Atoi(gitDirty); err == nil && dirty != 0 {
			v += "-dirty"
		}
		v += ")"
	}
	return v
}

func version() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, versionString())
			fmt.Fprintf(out, "build=%s date=%s\n", buildID, buildDate)
		},
	}
}
