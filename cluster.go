package matroska

import "math"

// Cluster is a segment-relative grouping of blocks sharing a raw timecode
// base. A Cluster is discovered with only its position known; BlockEntry
// materialization happens lazily as callers walk it. Cluster reads through
// its owning Segment's Reader, so its methods
// take no Reader of their own.
type Cluster struct {
	segment *Segment

	// index is the Cluster's sequence number among loaded clusters, or -1
	// while only preloaded (position known, not yet counted).
	index int

	// pos is the offset of elementStart relative to the segment payload.
	pos int64

	elementStart int64 // absolute offset of this Cluster's id byte
	elementSize  int64 // total element size (header + body), always known
	bodyPos      int64 // absolute offset of the first child

	timecode      int64
	timecodeKnown bool

	entries []*BlockEntry
	scanPos int64

	eos bool
}

// isClusterChildID reports whether id can legally appear as a direct child
// of a Cluster. It is used only while resolving an unknown-size Cluster's
// extent: the first id encountered that is NOT one of these signals that
// the previous Cluster has ended.
func isClusterChildID(id uint64) bool {
	switch id {
	case idTimecode, idSimpleBlock, idBlockGroup, idVoid, idCRC32:
		return true
	default:
		return false
	}
}

// Position returns this Cluster's offset relative to the segment payload.
func (c *Cluster) Position() int64 { return c.pos }

// ElementStart returns the absolute offset of this Cluster's id byte.
func (c *Cluster) ElementStart() int64 { return c.elementStart }

// ElementSize returns this Cluster's total element size (header + body).
func (c *Cluster) ElementSize() int64 { return c.elementSize }

// Index returns the Cluster's sequence number among loaded clusters, or -1
// if it is only preloaded.
func (c *Cluster) Index() int { return c.index }

// IsEOS reports whether this is the segment's end-of-stream sentinel.
func (c *Cluster) IsEOS() bool { return c.eos }

// ensureEntries parses block children until at least want entries have been
// materialized, the cluster's raw Timecode has been observed, or the
// cluster's body is exhausted (whichever comes first for each condition).
// It never re-scans bytes already consumed: scanPos only advances.
func (c *Cluster) ensureEntries(want int) error {
	if c.eos {
		return nil
	}
	r := c.segment.r
	if c.scanPos == 0 {
		c.scanPos = c.bodyPos
	}
	bodyEnd := c.elementStart + c.elementSize

	for (len(c.entries) < want || !c.timecodeKnown) && c.scanPos < bodyEnd {
		el, err := readElementHeader(r, c.scanPos, bodyEnd)
		if err != nil {
			return err
		}
		if el.unknownSize {
			return formatErrorf("cluster child 0x%X at %d has unknown size", el.id, c.scanPos)
		}

		switch el.id {
		case idTimecode:
			if !c.timecodeKnown {
				v, err := readUIntAt(r, el.bodyPos, int(el.bodySize))
				if err != nil {
					return err
				}
				c.timecode = int64(v)
				c.timecodeKnown = true
			}
		case idSimpleBlock:
			blk, err := parseBlockPayload(r, el.bodyPos, el.bodySize)
			if err != nil {
				if _, ok := err.(*FormatError); ok {
					c.entries = nil
				}
				return err
			}
			c.entries = append(c.entries, &BlockEntry{
				kind:    BlockEntryKindSimple,
				cluster: c,
				index:   len(c.entries),
				block:   blk,
			})
		case idBlockGroup:
			be, err := parseBlockGroup(r, el.bodyPos, el.bodySize, c, len(c.entries))
			if err != nil {
				if _, ok := err.(*FormatError); ok {
					c.entries = nil
				}
				return err
			}
			c.entries = append(c.entries, be)
		}

		c.scanPos = el.end()
	}

	if c.scanPos >= bodyEnd {
		// Timecode is required on the wire in practice; treat an absent
		// one (optional elements missing entirely are not errors) and default
		// to 0 rather than re-scanning forever.
		c.timecodeKnown = true
	}

	return nil
}

// Timecode returns the Cluster's raw (unscaled) tick count, loading it from
// the wire on first use.
func (c *Cluster) Timecode() (int64, error) {
	if err := c.ensureEntries(0); err != nil {
		return 0, err
	}
	return c.timecode, nil
}

// Time returns the Cluster's timecode scaled to nanoseconds via the
// segment's Info.TimecodeScale.
func (c *Cluster) Time() (int64, error) {
	tc, err := c.Timecode()
	if err != nil {
		return 0, err
	}
	return tc * int64(c.segment.timecodeScale()), nil
}

// FirstTime returns the scaled time of the Cluster's first BlockEntry.
func (c *Cluster) FirstTime() (int64, error) {
	be, err := c.GetFirst()
	if err != nil {
		return 0, err
	}
	tc, err := c.Timecode()
	if err != nil {
		return 0, err
	}
	if be == nil {
		return tc * int64(c.segment.timecodeScale()), nil
	}
	return be.block.Time(tc, c.segment.timecodeScale()), nil
}

// LastTime returns the scaled time of the Cluster's last BlockEntry,
// forcing the whole cluster to be parsed.
func (c *Cluster) LastTime() (int64, error) {
	if err := c.ensureEntries(math.MaxInt32); err != nil {
		return 0, err
	}
	tc, err := c.Timecode()
	if err != nil {
		return 0, err
	}
	if len(c.entries) == 0 {
		return tc * int64(c.segment.timecodeScale()), nil
	}
	last := c.entries[len(c.entries)-1]
	return last.block.Time(tc, c.segment.timecodeScale()), nil
}

// GetFirst returns the Cluster's first BlockEntry, or nil if it has none.
func (c *Cluster) GetFirst() (*BlockEntry, error) {
	if err := c.ensureEntries(1); err != nil {
		return nil, err
	}
	if len(c.entries) == 0 {
		return nil, nil
	}
	return c.entries[0], nil
}

// GetLast returns the Cluster's last BlockEntry, forcing full materialization.
func (c *Cluster) GetLast() (*BlockEntry, error) {
	if err := c.ensureEntries(math.MaxInt32); err != nil {
		return nil, err
	}
	if len(c.entries) == 0 {
		return nil, nil
	}
	return c.entries[len(c.entries)-1], nil
}

// GetNext returns the BlockEntry following cur within this Cluster, or nil
// if cur is the last one. It never crosses into another Cluster; Track and
// Cues do that walk themselves.
func (c *Cluster) GetNext(cur *BlockEntry) (*BlockEntry, error) {
	want := cur.index + 2
	if err := c.ensureEntries(want); err != nil {
		return nil, err
	}
	if cur.index+1 >= len(c.entries) {
		return nil, nil
	}
	return c.entries[cur.index+1], nil
}

// GetEntry returns the index'th BlockEntry (0-based) within this Cluster.
func (c *Cluster) GetEntry(index int) (*BlockEntry, error) {
	if index < 0 {
		return nil, ErrNotFound
	}
	if err := c.ensureEntries(index + 1); err != nil {
		return nil, err
	}
	if index >= len(c.entries) {
		return nil, ErrNotFound
	}
	return c.entries[index], nil
}

// EntryCount returns the number of BlockEntries materialized so far. It
// does not force further parsing.
func (c *Cluster) EntryCount() int { return len(c.entries) }

// parseBlockGroup parses a BlockGroup element's body into a single
// BlockEntry: it holds exactly one Block plus the reference timecodes and
// duration observed among its other children.
func parseBlockGroup(r Reader, bodyPos, bodySize int64, c *Cluster, index int) (*BlockEntry, error) {
	stop := bodyPos + bodySize
	be := &BlockEntry{kind: BlockEntryKindGroup, cluster: c, index: index}

	for cur := bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return nil, err
		}
		if child.unknownSize {
			return nil, formatErrorf("BlockGroup child 0x%X at %d has unknown size", child.id, cur)
		}

		switch child.id {
		case idBlock:
			blk, err := parseBlockPayload(r, child.bodyPos, child.bodySize)
			if err != nil {
				return nil, err
			}
			be.block = blk
		case idReferenceBlock:
			v, err := readIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			if v < 0 && !be.hasPrev {
				be.prev, be.hasPrev = v, true
			} else if v > 0 && !be.hasNext {
				be.next, be.hasNext = v, true
			}
		case idBlockDuration:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			be.duration, be.hasDuration = int64(v), true
		}

		cur = child.end()
	}

	if be.block == nil {
		return nil, formatErrorf("BlockGroup at %d has no Block child", bodyPos)
	}
	return be, nil
}
