// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package process

import (
	"fmt"

	"github.com/siemens/pcaped/packet"
	"github.com/siemens/pcaped/record"
)

// FixTcpStreams rewrites the TCP sequence and acknowledgement numbers of
// every flow so that hand-crafted or spliced captures carry consistent
// numbering again. A flow is the unordered pair of its "A.B.C.D:port"
// endpoints; the lexical order of the two endpoint strings labels the two
// directions. Each direction carries a running counter which is stamped
// into the packets and advanced by the segment length; a SYN re-anchors
// the counters from the packet itself and consumes one extra sequence
// number.
type FixTcpStreams struct {
	flows map[flowKey]*flowState
}

type flowKey struct {
	lo, hi string
}

// flowState holds the two per-direction counters, indexed by the endpoint
// comparison result.
type flowState struct {
	counter [2]uint64
}

func directionIndex(direction bool) int {
	if direction {
		return 1
	}
	return 0
}

// NewFixTcpStreams returns a FixTcpStreams processor with an empty flow
// table.
func NewFixTcpStreams() *FixTcpStreams {
	return &FixTcpStreams{flows: map[flowKey]*flowState{}}
}

// Name implements Processor.
func (*FixTcpStreams) Name() string { return "fix-tcp-streams" }

// Process implements Processor.
func (f *FixTcpStreams) Process(info *record.Record) {
	if !isEnhancedPacket(info) {
		return
	}
	ipv4 := info.Sub("ipv4_data")
	tcp := info.Sub("tcp_data")
	if ipv4 == nil || tcp == nil {
		return
	}

	src := endpoint(ipv4, tcp, "source")
	dst := endpoint(ipv4, tcp, "destination")
	key := flowKey{lo: src, hi: dst}
	if key.hi < key.lo {
		key.lo, key.hi = key.hi, key.lo
	}
	direction := src < dst
	local := directionIndex(direction)
	remote := directionIndex(!direction)

	segmentLength := ipv4.Uint("total_length") -
		4*ipv4.Uint("header_length") - 4*tcp.Uint("header_length")

	flow := f.flows[key]
	if flow == nil {
		flow = &flowState{}
		flow.counter[local] = tcp.Uint("seq_num")
		flow.counter[remote] = tcp.Uint("ack_num")
		f.flows[key] = flow
	}

	seqNum := tcp.Uint("seq_num")
	tcp.Set("seq_num", record.Int(flow.counter[local]))
	tcp.Set("ack_num", record.Int(flow.counter[remote]))
	flow.counter[local] += segmentLength

	if flags := tcp.Uint("flags"); flags&packet.FlagSYN != 0 {
		if flags&packet.FlagACK != 0 {
			// A SYN+ACK re-anchors this direction at the handshake,
			// discarding whatever the counter accumulated before.
			flow.counter[local] = seqNum
		} else {
			flow.counter[remote] = 0
		}
		// A SYN consumes one sequence number.
		flow.counter[local] = seqNum + 1
	}
}

func endpoint(ipv4, tcp *record.Record, side string) string {
	address, _ := ipv4.Get(side)
	b := address.ByteString()
	if len(b) < 4 {
		b = append(b, make([]byte, 4-len(b))...)
	}
	return fmt.Sprintf("%d.%d.%d.%d:%d",
		b[0], b[1], b[2], b[3], tcp.Uint(side+"_port"))
}
