// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package cli

import (
	"github.com/spf13/cobra"
)

// SetupCLI defines an exposed plugin symbol type for adding “things” to a
// cobra root command (the pcaped root command in particular), such as
// sub-commands and CLI flags.
type SetupCLI func(*cobra.Command)

// CommandExamples defines an exposed symbol with CLI examples, indexed by a
// particular (sub) command, namely: “pcap2yaml”, “yaml2pcap”, and “process”
// at this time.
type CommandExamples func() map[string]string

// BeforeCommand defines an exposed plugin symbol type for running checks
// after the command line args have been processed and before running the
// (choosen) command.
type BeforeCommand func(*cobra.Command) error
