package cmd

import "github.com/spf13/cobra"

var RootCmd = &cobra.Command{
	Use:          "bucketmap",
	Short:        "bucketmap is a chained hash table served over RESP",
	SilenceUsage: true,
}

func init() {
	RootCmd.AddCommand(serve())
	RootCmd.AddCommand(repl())
	RootCmd.AddCommand(version())
}

func Execute() error {
	return RootCmd.Execute()
}
