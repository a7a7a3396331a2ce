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

// yaml2pcapCmd defines the "pcaped yaml2pcap" command, translating the YAML
// rendition of a capture back into binary pcapng.
var yaml2pcapCmd = &cobra.Command{
	Use:   "yaml2pcap [INPUT-FILE [OUTPUT-FILE]]",
	Short: "Translate the YAML rendition of a capture back into pcapng.",
	Long: `Translate the YAML rendition of a capture back into binary pcapng.
Without arguments the rendition is read from stdin and the capture written
to stdout; "-" explicitly selects a standard stream. With only an input file
named, the output file derives from it by swapping the extension for
".pcapng".`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, output := inputOutputArgs(args)
		worker, err := pcaped.NewWorker(input, output, pcaped.CaptureExt)
		if err != nil {
			return err
		}
		defer worker.Close()
		return pcaped.Yaml2Pcap(worker.In, worker.Out)
	},
}

func init() {
	plugger.Group[cli.SetupCLI]().Register(
		Yaml2PcapSetupCLI, plugger.WithPlugin("yaml2pcap"))
}

// Yaml2PcapSetupCLI adds the "yaml2pcap" command.
func Yaml2PcapSetupCLI(cmd *cobra.Command) {
	cmd.AddCommand(yaml2pcapCmd)
}
