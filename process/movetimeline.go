// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package process

import (
	"time"

	"github.com/siemens/pcaped/pcapng"
	"github.com/siemens/pcaped/record"
)

// MoveTimeline shifts the whole capture timeline so that the first packet
// (or interface statistics) timestamp lands on the configured start time,
// with all later timestamps keeping their original distance to the first
// one. The shift offset latches on the first matching record.
type MoveTimeline struct {
	start   time.Time
	offset  time.Duration
	latched bool
}

// NewMoveTimeline returns a MoveTimeline processor shifting the first
// timestamp onto start.
func NewMoveTimeline(start time.Time) *MoveTimeline {
	return &MoveTimeline{start: start}
}

// Name implements Processor.
func (*MoveTimeline) Name() string { return "move-timeline" }

// Process implements Processor.
func (m *MoveTimeline) Process(info *record.Record) {
	blockType := info.Uint("block_type")
	if blockType != pcapng.BlockTypeEnhancedPacket &&
		blockType != pcapng.BlockTypeInterfaceStatistic {
		return
	}
	datetime := info.Time("datetime")
	if !m.latched {
		m.offset = datetime.Sub(m.start)
		m.latched = true
	}
	info.Set("datetime", record.Time(datetime.Add(-m.offset)))
}
