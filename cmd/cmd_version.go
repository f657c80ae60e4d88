package cmd

import (
	"fmt"

	sentinel "github.com/rustyeddy/sentinel"
	"github.com/spf13/cobra"
)

var (
	version = sentinel.Version

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of sentinel",
		Long:  `All software has versions. This is sentinel's.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmdOutput, version)
		},
	}
)
