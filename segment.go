package matroska

import (
	"errors"
	"sort"
)

// ErrNoMoreClusters is returned by LoadCluster when the top-level cursor is
// no longer sitting on a Cluster id — either the segment's known size has
// been reached, or (for a streamed segment) no further Cluster is present
// yet. ParseNext treats it as "the next cluster is the EOS sentinel."
var ErrNoMoreClusters = errors.New("matroska: no more clusters")

// Segment is the top-level Matroska container: the incremental state
// machine. It owns at most one each of SeekHead, SegmentInfo, Tracks and
// Cues, plus the ordered cluster array.
type Segment struct {
	r Reader

	start       int64 // absolute offset of the segment payload
	size        int64 // payload size; meaningless if unknownSize
	unknownSize bool

	pos int64 // m_pos: absolute offset of the next unparsed top-level byte

	seekHead *SeekHead
	info     *SegmentInfo
	tracks   *Tracks
	cues     *Cues

	clusters  []*Cluster // loaded run, index >= 0, ordered by position
	preloaded []*Cluster // preloaded run, index == -1, ordered by position

	// pendingUnknown holds a Cluster whose unknown-size scan ran out of
	// available bytes mid-resolution, so the next LoadCluster call repeats
	// the scan from the cluster's body start without re-reading the id+size
	// pair.
	pendingUnknown *Cluster

	headersDone bool
	done        bool

	eos *Cluster
}

// Open scans past the EBML header and any leading Void/CRC-32 elements
// starting at pos to locate the Segment master element. The returned
// Segment's cursor sits at the start of the Segment payload; call
// ParseHeaders next.
func Open(r Reader, pos int64) (*Segment, error) {
	for {
		el, err := readElementHeader(r, pos, -1)
		if err != nil {
			return nil, err
		}
		if el.id == idEBML {
			h, err := ParseEBMLHeader(r, pos)
			if err != nil {
				return nil, err
			}
			pos = h.SegmentPos
			continue
		}
		if el.id == idVoid || el.id == idCRC32 {
			if el.unknownSize {
				return nil, formatErrorf("leading element 0x%X at %d has unknown size", el.id, pos)
			}
			pos = el.end()
			continue
		}
		break
	}

	el, matched, err := matchElement(r, pos, -1, idSegment)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, formatErrorf("expected Segment at %d, got id 0x%X", pos, el.id)
	}

	s := &Segment{r: r, start: el.bodyPos, pos: el.bodyPos}
	if el.unknownSize {
		s.size, s.unknownSize = -1, true
	} else {
		s.size = el.bodySize
	}
	s.eos = &Cluster{segment: s, index: -1, eos: true}
	return s, nil
}

func (s *Segment) stop() int64 {
	if s.unknownSize {
		return -1
	}
	return s.start + s.size
}

func (s *Segment) timecodeScale() uint64 {
	if s.info != nil && s.info.TimecodeScale != 0 {
		return s.info.TimecodeScale
	}
	return 1000000
}

// GetInfo returns the segment's SegmentInfo, or nil if none was present
// (or ParseHeaders has not reached it yet).
func (s *Segment) GetInfo() *SegmentInfo { return s.info }

// GetTracks returns the segment's Tracks, or nil.
func (s *Segment) GetTracks() *Tracks { return s.tracks }

// GetCues returns the segment's Cues index, or nil.
func (s *Segment) GetCues() *Cues { return s.cues }

// GetSeekHead returns the segment's SeekHead, or nil.
func (s *Segment) GetSeekHead() *SeekHead { return s.seekHead }

// GetFirst returns the first loaded Cluster, or the EOS sentinel if none
// has been loaded yet.
func (s *Segment) GetFirst() *Cluster {
	if len(s.clusters) == 0 {
		return s.eos
	}
	return s.clusters[0]
}

// GetLast returns the last loaded Cluster, or the EOS sentinel if none has
// been loaded. Calling ParseNext on the result of GetLast yields the EOS
// sentinel once every cluster has been loaded; before that it loads and
// returns the next one.
func (s *Segment) GetLast() *Cluster {
	if len(s.clusters) == 0 {
		return s.eos
	}
	return s.clusters[len(s.clusters)-1]
}

// Count returns the number of loaded clusters.
func (s *Segment) Count() int { return len(s.clusters) }

// ParseHeaders advances the cursor consuming non-Cluster top-level elements
// (SeekHead, Info, Tracks, Cues, Chapters/Tags/Attachments — skipped, Void)
// until the first Cluster id is observed. At most one instance of each
// unique child is retained; duplicates are skipped (first-wins). Calling
// it again after it has returned nil is a no-op.
func (s *Segment) ParseHeaders() error {
	if s.headersDone {
		return nil
	}
	stop := s.stop()

	for {
		if !s.unknownSize && s.pos >= stop {
			s.headersDone = true
			return nil
		}

		el, err := readElementHeader(s.r, s.pos, stop)
		if err != nil {
			return err
		}

		switch el.id {
		case idCluster:
			s.headersDone = true
			return nil

		case idVoid, idChapters, idTags, idAttachments:
			if el.unknownSize {
				return formatErrorf("top-level element 0x%X at %d has unknown size", el.id, s.pos)
			}
			s.pos = el.end()

		case idSeekHead:
			if el.unknownSize {
				return formatErrorf("SeekHead at %d has unknown size", s.pos)
			}
			if s.seekHead == nil {
				sh, err := parseSeekHead(s.r, el.bodyPos, el.bodySize, s.start)
				if err != nil {
					return err
				}
				s.seekHead = sh
			}
			s.pos = el.end()

		case idInfo:
			if el.unknownSize {
				return formatErrorf("Info at %d has unknown size", s.pos)
			}
			if s.info == nil {
				info, err := parseSegmentInfo(s.r, el.bodyPos, el.bodySize)
				if err != nil {
					return err
				}
				s.info = info
			}
			s.pos = el.end()

		case idTracks:
			if el.unknownSize {
				return formatErrorf("Tracks at %d has unknown size", s.pos)
			}
			if s.tracks == nil {
				tr, err := parseTracks(s, s.r, el.bodyPos, el.bodySize)
				if err != nil {
					return err
				}
				s.tracks = tr
			}
			s.pos = el.end()

		case idCues:
			if el.unknownSize {
				return formatErrorf("Cues at %d has unknown size", s.pos)
			}
			if s.cues == nil {
				s.cues = newCues(s, el.bodyPos, el.bodySize)
			}
			s.pos = el.end()

		default:
			if el.unknownSize {
				return formatErrorf("unexpected unknown-size top-level element 0x%X at %d", el.id, s.pos)
			}
			s.pos = el.end()
		}
	}
}

// scanUnknownClusterEnd resolves an unknown-size Cluster's extent by
// scanning its children until one is encountered that cannot legally
// belong to a Cluster. It returns the absolute position where the Cluster ends
// (and the next top-level element, if any, begins).
func (s *Segment) scanUnknownClusterEnd(c *Cluster) (int64, error) {
	total, _ := s.r.Length()
	cur := c.bodyPos

	for {
		if total >= 0 && cur >= total {
			return cur, nil
		}
		el, err := readElementHeader(s.r, cur, -1)
		if err != nil {
			return 0, err
		}
		if !isClusterChildID(el.id) {
			return cur, nil
		}
		if el.unknownSize {
			return 0, formatErrorf("cluster child 0x%X at %d has unknown size", el.id, cur)
		}
		cur = el.end()
	}
}

// appendOrMergeCluster appends c to the loaded run, merging it with a
// matching preloaded preview at the same position if one exists.
func (s *Segment) appendOrMergeCluster(c *Cluster) {
	i := sort.Search(len(s.preloaded), func(i int) bool {
		return s.preloaded[i].elementStart >= c.elementStart
	})
	if i < len(s.preloaded) && s.preloaded[i].elementStart == c.elementStart {
		merged := s.preloaded[i]
		merged.elementSize = c.elementSize
		merged.bodyPos = c.bodyPos
		s.preloaded = append(s.preloaded[:i], s.preloaded[i+1:]...)
		c = merged
	}
	c.index = len(s.clusters)
	c.pos = c.elementStart - s.start
	s.clusters = append(s.clusters, c)
}

// LoadCluster partially parses the Cluster at the current cursor (learning
// its position and extent, but not its BlockEntries), appends it to the
// loaded run, and advances the cursor past it. It returns
// ErrNoMoreClusters if the cursor is not on a Cluster id (the segment's
// known extent has been reached, or no Cluster is available yet for a
// streamed segment).
func (s *Segment) LoadCluster() error {
	if s.done {
		return ErrNoMoreClusters
	}

	if s.pendingUnknown != nil {
		c := s.pendingUnknown
		end, err := s.scanUnknownClusterEnd(c)
		if err != nil {
			return err
		}
		c.elementSize = end - c.elementStart
		s.pendingUnknown = nil
		s.appendOrMergeCluster(c)
		s.pos = end
		return nil
	}

	stop := s.stop()
	if !s.unknownSize && s.pos >= stop {
		s.done = true
		return ErrNoMoreClusters
	}

	el, err := readElementHeader(s.r, s.pos, stop)
	if err != nil {
		return err
	}
	if el.id != idCluster {
		return ErrNoMoreClusters
	}

	c := &Cluster{segment: s, elementStart: s.pos, bodyPos: el.bodyPos}
	if el.unknownSize {
		end, err := s.scanUnknownClusterEnd(c)
		if err != nil {
			if _, needMore := IsNeedMore(err); needMore {
				s.pendingUnknown = c
			}
			return err
		}
		c.elementSize = end - c.elementStart
		s.appendOrMergeCluster(c)
		s.pos = end
		return nil
	}

	c.elementSize = el.end() - c.elementStart
	s.appendOrMergeCluster(c)
	s.pos = el.end()
	return nil
}

// ensureFirstCluster returns the first loaded cluster, driving LoadCluster
// as needed if none has been loaded yet.
func (s *Segment) ensureFirstCluster() (*Cluster, error) {
	for len(s.clusters) == 0 {
		if err := s.LoadCluster(); err != nil {
			if errors.Is(err, ErrNoMoreClusters) {
				return s.eos, nil
			}
			return nil, err
		}
	}
	return s.clusters[0], nil
}

// ParseNext returns the Cluster strictly following curr in segment order,
// a cached cluster if one is already loaded, or one newly
// discovered by driving LoadCluster. Returns the EOS sentinel once the
// segment's clusters are exhausted.
func (s *Segment) ParseNext(curr *Cluster) (*Cluster, error) {
	if curr == nil || curr.IsEOS() {
		return s.eos, nil
	}
	if curr.index >= 0 && curr.index+1 < len(s.clusters) {
		return s.clusters[curr.index+1], nil
	}

	for {
		err := s.LoadCluster()
		if err == nil {
			if curr.index >= 0 && curr.index+1 < len(s.clusters) {
				return s.clusters[curr.index+1], nil
			}
			continue
		}
		if errors.Is(err, ErrNoMoreClusters) {
			return s.eos, nil
		}
		return nil, err
	}
}

// FindCluster returns the last loaded cluster whose scaled time is ≤ ns, or
// the EOS sentinel if none qualifies. It searches only
// already-loaded clusters; it does not drive further parsing.
func (s *Segment) FindCluster(ns int64) (*Cluster, error) {
	lo, hi, best := 0, len(s.clusters)-1, -1
	for lo <= hi {
		mid := (lo + hi) / 2
		t, err := s.clusters[mid].Time()
		if err != nil {
			return nil, err
		}
		if t <= ns {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	if best < 0 {
		return s.eos, nil
	}
	return s.clusters[best], nil
}

// FindOrPreloadCluster returns the Cluster at segment-relative position
// pos, searching both the loaded and preloaded runs by binary search and,
// if absent from both, creating a preloaded Cluster (index -1) there.
func (s *Segment) FindOrPreloadCluster(pos int64) (*Cluster, error) {
	abs := s.start + pos

	if c, ok := findClusterByStart(s.clusters, abs); ok {
		return c, nil
	}
	if c, ok := findClusterByStart(s.preloaded, abs); ok {
		return c, nil
	}

	el, err := readElementHeader(s.r, abs, -1)
	if err != nil {
		return nil, err
	}
	if el.id != idCluster {
		return nil, formatErrorf("expected Cluster at %d, got id 0x%X", abs, el.id)
	}

	c := &Cluster{segment: s, index: -1, elementStart: abs, pos: pos, bodyPos: el.bodyPos}
	if el.unknownSize {
		end, err := s.scanUnknownClusterEnd(c)
		if err != nil {
			return nil, err
		}
		c.elementSize = end - abs
	} else {
		c.elementSize = el.end() - abs
	}

	i := sort.Search(len(s.preloaded), func(i int) bool { return s.preloaded[i].elementStart >= abs })
	s.preloaded = append(s.preloaded, nil)
	copy(s.preloaded[i+1:], s.preloaded[i:])
	s.preloaded[i] = c
	return c, nil
}

func findClusterByStart(list []*Cluster, abs int64) (*Cluster, bool) {
	i := sort.Search(len(list), func(i int) bool { return list[i].elementStart >= abs })
	if i < len(list) && list[i].elementStart == abs {
		return list[i], true
	}
	return nil, false
}
