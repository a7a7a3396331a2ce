// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Implements the pcaped "root" command. The individual sub-commands register
// themselves via a plugin mechanism, so that extended translator CLIs can be
// assembled from this base.

package command

import (
	"github.com/spf13/cobra"
	"github.com/thediveo/go-plugger/v3"

	"github.com/siemens/pcaped/cli"
)

// rootCmd represents the Cobra "root" command and thus the pcaped CLI
// itself.
var rootCmd = &cobra.Command{
	Use:   "pcaped",
	Short: "Translate pcapng captures to editable YAML and back",
	Long: `pcaped translates pcapng packet captures into an editable YAML rendition
and back, and processes such renditions: fixing up lengths and checksums,
renumbering TCP streams, anonymizing MAC addresses, and shifting capture
timelines.`,
	// See: https://github.com/spf13/cobra/issues/340
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Run the registered before-the-command plugins
		for _, beforeCmd := range plugger.Group[cli.BeforeCommand]().Symbols() {
			if err := beforeCmd(cmd); err != nil {
				return err
			}
		}
		return nil
	},
}

// SetupCLI registers the global ("persistent") CLI flags, as well as the
// (sub)commands. The individual commands are registered via a
// plugin-mechanism.
func SetupCLI() *cobra.Command {
	// Call registered plugins in order to add further CLI args as well as
	// commands to the root command (or below).
	for _, setupCLI := range plugger.Group[cli.SetupCLI]().Symbols() {
		setupCLI(rootCmd)
	}
	// Fill in/expand command example sections, where additional command
	// examples are available.
	for _, cmd := range rootCmd.Commands() {
		examples := cli.Examples(cmd.Name())
		if examples == "" {
			continue
		}
		cmd.Example = examples
	}

	return rootCmd
}

// inputOutputArgs splits the optional positional INPUT-FILE and OUTPUT-FILE
// args shared by all translation commands.
func inputOutputArgs(args []string) (input, output string) {
	if len(args) > 0 {
		input = args[0]
	}
	if len(args) > 1 {
		output = args[1]
	}
	return
}
