// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package command

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/go-plugger/v3"

	"github.com/siemens/pcaped"
	"github.com/siemens/pcaped/cli"
	"github.com/siemens/pcaped/process"
	"github.com/siemens/pcaped/record"
)

// processCmd defines the "pcaped process" command, streaming the YAML
// rendition of a capture through the selected processors.
var processCmd = &cobra.Command{
	Use:   "process [flags] [INPUT-FILE [OUTPUT-FILE]]",
	Short: "Process the YAML rendition of a capture.",
	Long: `Process the YAML rendition of a capture, applying the selected
processors to each record. When several processors are selected, they apply
in this fixed order, regardless of the flag order on the command line:

  1. --clean-mac
  2. --move-timeline
  3. --fix-lengths
  4. --fix-tcp-streams
  5. --fix-checksums`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		processors, err := selectedProcessors(cmd.Flags())
		if err != nil {
			return err
		}
		for _, processor := range processors {
			log.Debugf("applying processor %s", processor.Name())
		}
		input, output := inputOutputArgs(args)
		worker, err := pcaped.NewWorker(input, output, pcaped.DocumentExt)
		if err != nil {
			return err
		}
		defer worker.Close()
		return pcaped.ProcessYaml(worker.In, worker.Out, processors)
	},
}

// selectedProcessors assembles the processor pipeline from the process
// command's flags, in the documented fixed order.
func selectedProcessors(flags *pflag.FlagSet) ([]process.Processor, error) {
	var processors []process.Processor
	if ok, _ := flags.GetBool("clean-mac"); ok {
		processors = append(processors, process.CleanMac{})
	}
	if start, _ := flags.GetString("move-timeline"); start != "" {
		t, err := record.ParseTimestamp(start)
		if err != nil {
			return nil, fmt.Errorf("invalid --move-timeline: %w", err)
		}
		processors = append(processors, process.NewMoveTimeline(t))
	}
	if ok, _ := flags.GetBool("fix-lengths"); ok {
		processors = append(processors, process.FixLengths{})
	}
	if ok, _ := flags.GetBool("fix-tcp-streams"); ok {
		processors = append(processors, process.NewFixTcpStreams())
	}
	if ok, _ := flags.GetBool("fix-checksums"); ok {
		processors = append(processors, process.FixChecksums{})
	}
	return processors, nil
}

func init() {
	plugger.Group[cli.SetupCLI]().Register(
		ProcessSetupCLI, plugger.WithPlugin("process"))
}

// ProcessSetupCLI adds the "process" command.
func ProcessSetupCLI(cmd *cobra.Command) {
	cmd.AddCommand(processCmd)
	pf := processCmd.PersistentFlags()
	pf.Bool("clean-mac", false,
		"zero the Ethernet MAC addresses of all packets")
	pf.String("move-timeline", "",
		"move all traffic to the specified ISO-8601 start date")
	pf.Bool("fix-lengths", false,
		"recompute the layered header length fields")
	pf.Bool("fix-tcp-streams", false,
		"rewrite TCP sequence/acknowledgement numbers per flow")
	pf.Bool("fix-checksums", false,
		"recompute the IPv4/UDP/TCP checksums")
}
