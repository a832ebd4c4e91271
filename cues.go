package matroska

import "sort"

// TrackPosition maps a CuePoint to a specific (cluster, block) location for
// one track.
type TrackPosition struct {
	Track      uint64
	ClusterPos int64 // segment-relative
	Block      int64 // 1-based; 0/absent means 1
}

// CuePoint is one entry in the Cues index. It has two life stages:
// preloaded (time and position known) and loaded (TrackPositions
// populated).
type CuePoint struct {
	pos  int64 // absolute start of this CuePoint's body
	size int64

	timecode  int64
	loaded    bool
	positions []TrackPosition
}

// Timecode returns the cue's raw (unscaled) tick count.
func (cp *CuePoint) Timecode() int64 { return cp.timecode }

// Time returns the cue's timecode scaled to nanoseconds.
func (cp *CuePoint) Time(scale uint64) int64 { return cp.timecode * int64(scale) }

// Loaded reports whether this cue's TrackPositions have been parsed yet.
func (cp *CuePoint) Loaded() bool { return cp.loaded }

// Positions returns the cue's TrackPositions. It is empty until Load (or a
// Find/GetBlock call that loads this cue) has run.
func (cp *CuePoint) Positions() []TrackPosition { return cp.positions }

// Cues is the segment's lazy cue-point index: entries are preloaded
// (time + position only) as the element is scanned, and loaded
// (TrackPositions parsed) only on demand. It reads through its owning
// Segment's Reader.
type Cues struct {
	segment *Segment

	bodyPos int64
	bodyEnd int64
	scanPos int64

	points      []*CuePoint
	doneParsing bool
}

func newCues(s *Segment, bodyPos, bodySize int64) *Cues {
	return &Cues{segment: s, bodyPos: bodyPos, bodyEnd: bodyPos + bodySize, scanPos: bodyPos}
}

// DoneParsing reports whether every CuePoint in the Cues element has been
// at least preloaded.
func (cu *Cues) DoneParsing() bool { return cu.doneParsing }

// Count returns the number of CuePoints preloaded so far.
func (cu *Cues) Count() int { return len(cu.points) }

// GetFirst returns the earliest preloaded CuePoint, or nil if none.
func (cu *Cues) GetFirst() *CuePoint {
	if len(cu.points) == 0 {
		return nil
	}
	return cu.points[0]
}

// GetLast returns the latest preloaded CuePoint, or nil if none.
func (cu *Cues) GetLast() *CuePoint {
	if len(cu.points) == 0 {
		return nil
	}
	return cu.points[len(cu.points)-1]
}

// GetNext returns the CuePoint immediately following cp, or nil at the end.
func (cu *Cues) GetNext(cp *CuePoint) *CuePoint {
	for i, p := range cu.points {
		if p == cp {
			if i+1 < len(cu.points) {
				return cu.points[i+1]
			}
			return nil
		}
	}
	return nil
}

// Preload scans every remaining CuePoint child, recording (time, pos) for
// each without decoding its TrackPositions. It is idempotent once
// DoneParsing reports true.
func (cu *Cues) Preload() error {
	return cu.preloadAll()
}

// preloadAll scans every remaining CuePoint child, recording (time, pos)
// for each without decoding its TrackPositions.
func (cu *Cues) preloadAll() error {
	r := cu.segment.r
	for cu.scanPos < cu.bodyEnd {
		el, err := readElementHeader(r, cu.scanPos, cu.bodyEnd)
		if err != nil {
			return err
		}
		if el.unknownSize {
			return formatErrorf("Cues child 0x%X at %d has unknown size", el.id, cu.scanPos)
		}
		if el.id == idCuePoint {
			cp, err := preloadCuePoint(r, el.bodyPos, el.bodySize)
			if err != nil {
				return err
			}
			cu.points = append(cu.points, cp)
		}
		cu.scanPos = el.end()
	}
	cu.doneParsing = true
	return nil
}

func preloadCuePoint(r Reader, bodyPos, bodySize int64) (*CuePoint, error) {
	cp := &CuePoint{pos: bodyPos, size: bodySize}
	stop := bodyPos + bodySize

	for cur := bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return nil, err
		}
		if child.unknownSize {
			return nil, formatErrorf("CuePoint child 0x%X at %d has unknown size", child.id, cur)
		}
		if child.id == idCueTime {
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			cp.timecode = int64(v)
		}
		cur = child.end()
	}
	return cp, nil
}

// Load decodes cp's TrackPositions, if not already done. Calling it twice
// is a no-op.
func (cu *Cues) Load(cp *CuePoint) error {
	if cp.loaded {
		return nil
	}
	r := cu.segment.r
	stop := cp.pos + cp.size

	for cur := cp.pos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return err
		}
		if child.unknownSize {
			return formatErrorf("CuePoint child 0x%X at %d has unknown size", child.id, cur)
		}
		if child.id == idCueTrackPositions {
			tp, err := parseCueTrackPosition(r, child.bodyPos, child.bodySize)
			if err != nil {
				return err
			}
			cp.positions = append(cp.positions, tp)
		}
		cur = child.end()
	}

	cp.loaded = true
	return nil
}

func parseCueTrackPosition(r Reader, bodyPos, bodySize int64) (TrackPosition, error) {
	var tp TrackPosition
	stop := bodyPos + bodySize

	for cur := bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return TrackPosition{}, err
		}
		if child.unknownSize {
			return TrackPosition{}, formatErrorf("CueTrackPositions child 0x%X at %d has unknown size", child.id, cur)
		}

		switch child.id {
		case idCueTrack:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return TrackPosition{}, err
			}
			tp.Track = v
		case idCueClusterPos:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return TrackPosition{}, err
			}
			tp.ClusterPos = int64(v)
		case idCueBlockNumber:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return TrackPosition{}, err
			}
			tp.Block = int64(v)
		}

		cur = child.end()
	}
	return tp, nil
}

// Find performs a binary search by time over the (fully preloaded) cue
// array, returning the last cue whose time ≤ time_ns.
// If that cue has no TrackPosition for track, it walks backwards to the
// previous one that does. Returns ErrNotFound if no such cue exists.
func (cu *Cues) Find(timeNs int64, track *Track) (*CuePoint, *TrackPosition, error) {
	if err := cu.preloadAll(); err != nil {
		return nil, nil, err
	}
	scale := cu.segment.timecodeScale()

	idx := sort.Search(len(cu.points), func(i int) bool {
		return cu.points[i].Time(scale) > timeNs
	}) - 1

	for idx >= 0 {
		cp := cu.points[idx]
		if err := cu.Load(cp); err != nil {
			return nil, nil, err
		}
		for i := range cp.positions {
			if cp.positions[i].Track == track.info.Number {
				return cp, &cp.positions[i], nil
			}
		}
		idx--
	}
	return nil, nil, ErrNotFound
}

// GetBlock returns the BlockEntry a (CuePoint, TrackPosition) pair points
// at: it ensures the target Cluster is present (preloading it if
// necessary) and drives that Cluster's parser up to the requested (1-based)
// block index.
func (cu *Cues) GetBlock(cp *CuePoint, tp *TrackPosition) (*BlockEntry, error) {
	c, err := cu.segment.FindOrPreloadCluster(tp.ClusterPos)
	if err != nil {
		return nil, err
	}
	block := tp.Block
	if block <= 0 {
		block = 1
	}
	return c.GetEntry(int(block - 1))
}

// Seek is a convenience wrapping Find+GetBlock, used by Track.Seek.
func (cu *Cues) Seek(timeNs int64, track *Track) (*BlockEntry, error) {
	cp, tp, err := cu.Find(timeNs, track)
	if err != nil {
		return nil, err
	}
	return cu.GetBlock(cp, tp)
}
