// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package command

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thediveo/go-plugger/v3"

	"github.com/siemens/pcaped"
	"github.com/siemens/pcaped/cli"
)

// Provides the “pcaped version” command. The semantic version is the one
// defined for the main pcaped package, so there's no separate version
// number for the pcaped CLI command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s version %s\n", cmd.Parent().Name(), pcaped.SemVersion)
	},
}

func init() {
	plugger.Group[cli.SetupCLI]().Register(
		VersionSetupCLI, plugger.WithPlugin("version"))
}

// VersionSetupCLI adds the “version” command.
func VersionSetupCLI(cmd *cobra.Command) {
	cmd.AddCommand(versionCmd)
}
