// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package command

import (
	"github.com/thediveo/go-plugger/v3"

	"github.com/siemens/pcaped/cli"
)

func init() {
	plugger.Group[cli.CommandExamples]().Register(
		Examples, plugger.WithPlugin("pcaped"))
}

// Examples returns the base examples for the pcaped commands.
func Examples() map[string]string {
	return map[string]string{
		"pcap2yaml": `  # translate a capture, writing capture.yaml alongside
  pcaped pcap2yaml capture.pcapng

  # translate from stdin to stdout
  tcpdump -w - | pcaped pcap2yaml`,
		"yaml2pcap": `  # translate a rendition back, writing capture.pcapng alongside
  pcaped yaml2pcap capture.yaml`,
		"process": `  # anonymize MACs and move the capture to new year 2018
  pcaped process capture.yaml anon.yaml --clean-mac --move-timeline 2018-01-01

  # re-derive lengths and checksums after editing payloads
  pcaped process edited.yaml fixed.yaml --fix-lengths --fix-checksums`,
	}
}
