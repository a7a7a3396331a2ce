// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package command

import (
	"github.com/spf13/cobra"
	"github.com/thediveo/go-plugger/v3"

	"github.com/siemens/pcaped"
	"github.com/siemens/pcaped/cli"
)

// pcap2yamlCmd defines the "pcaped pcap2yaml" command, translating a binary
// pcapng capture into its editable YAML rendition.
var pcap2yamlCmd = &cobra.Command{
	Use:   "pcap2yaml [INPUT-FILE [OUTPUT-FILE]]",
	Short: "Translate a pcapng capture into its YAML rendition.",
	Long: `Translate a pcapng capture into its YAML rendition. Without arguments
the capture is read from stdin and the rendition written to stdout; "-"
explicitly selects a standard stream. With only an input file named, the
output file derives from it by swapping the extension for ".yaml" (backing
up the input first if both would collide).`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output := inputOutputArgs(args)
		worker, err := pcaped.NewWorker(input, output, pcaped.DocumentExt)
		if err != nil {
			return err
		}
		defer worker.Close()
		return pcaped.Pcap2Yaml(worker.In, worker.Out)
	},
}

func init() {
	plugger.Group[cli.SetupCLI]().Register(
		Pcap2YamlSetupCLI, plugger.WithPlugin("pcap2yaml"))
}

// Pcap2YamlSetupCLI adds the "pcap2yaml" command.
func Pcap2YamlSetupCLI(cmd *cobra.Command) {
	cmd.AddCommand(pcap2yamlCmd)
}
