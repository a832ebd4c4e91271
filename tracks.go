package matroska

import (
	"errors"
	"sort"
)

// TrackKind discriminates the Track sum type in place of
// a Video/Audio/Other inheritance hierarchy.
type TrackKind int

const (
	TrackOther TrackKind = iota
	TrackVideo
	TrackAudio
)

// TrackInfo holds the fields common to every Track variant.
type TrackInfo struct {
	Type          uint64
	Number        uint64
	UID           uint64
	NameUTF8      string
	CodecID       string
	CodecNameUTF8 string
	CodecPrivate  []byte
	Lacing        bool

	// SettingsStart/SettingsSize span the TrackEntry's Video or Audio
	// sub-master element, for callers that want the raw span.
	SettingsStart int64
	SettingsSize  int64
}

// VideoSettings holds the fields specific to a video Track.
type VideoSettings struct {
	Width     uint64
	Height    uint64
	FrameRate float64
}

// AudioSettings holds the fields specific to an audio Track.
type AudioSettings struct {
	SamplingRate float64
	Channels     uint64
	BitDepth     uint64
}

// Track is one TrackEntry: a logical media stream, polymorphic over
// Video/Audio/Other rather than an inheritance hierarchy. Its back-reference
// to Segment is non-owning and supplies the Reader its lookups read through.
type Track struct {
	segment *Segment

	kind  TrackKind
	info  TrackInfo
	video VideoSettings
	audio AudioSettings

	encodings []ContentEncoding
}

// Kind reports which of Video/Audio/Other this track is.
func (t *Track) Kind() TrackKind { return t.kind }

// Info returns the track's common fields.
func (t *Track) Info() TrackInfo { return t.info }

// Video returns the track's video-specific fields (zero value if not a
// video track).
func (t *Track) Video() VideoSettings { return t.video }

// Audio returns the track's audio-specific fields (zero value if not an
// audio track).
func (t *Track) Audio() AudioSettings { return t.audio }

// ContentEncodings returns the track's ordered ContentEncoding descriptors.
func (t *Track) ContentEncodings() []ContentEncoding { return t.encodings }

// vetEntry is the per-kind admission filter: Video admits
// any entry for this track, Audio admits only key blocks.
func (t *Track) vetEntry(be *BlockEntry) bool {
	if be == nil || be.block == nil {
		return false
	}
	if t.kind == TrackAudio {
		return be.block.IsKey()
	}
	return true
}

// GetFirst returns the first BlockEntry belonging to this track, walking
// clusters from the start of the segment, or nil if the track has none.
func (t *Track) GetFirst() (*BlockEntry, error) {
	c, err := t.segment.ensureFirstCluster()
	if err != nil {
		return nil, err
	}
	return t.scanFrom(c)
}

// GetNext returns the BlockEntry belonging to this track following cur,
// walking across Cluster boundaries via Segment.ParseNext as needed.
func (t *Track) GetNext(cur *BlockEntry) (*BlockEntry, error) {
	if cur == nil {
		return t.GetFirst()
	}

	be, err := cur.cluster.GetNext(cur)
	if err != nil {
		return nil, err
	}
	for be != nil {
		if be.block.TrackNumber() == t.info.Number && t.vetEntry(be) {
			return be, nil
		}
		be, err = cur.cluster.GetNext(be)
		if err != nil {
			return nil, err
		}
	}

	next, err := t.segment.ParseNext(cur.cluster)
	if err != nil {
		return nil, err
	}
	return t.scanFrom(next)
}

// scanFrom walks forward from Cluster c (inclusive) looking for the first
// BlockEntry admitted by this track.
func (t *Track) scanFrom(c *Cluster) (*BlockEntry, error) {
	for c != nil && !c.IsEOS() {
		be, err := c.GetFirst()
		if err != nil {
			return nil, err
		}
		for be != nil {
			if be.block.TrackNumber() == t.info.Number && t.vetEntry(be) {
				return be, nil
			}
			be, err = c.GetNext(be)
			if err != nil {
				return nil, err
			}
		}
		c, err = t.segment.ParseNext(c)
		if err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// Seek returns the last BlockEntry on this track with time ≤ ns that
// passes vetEntry: it scans forward from the entry the segment's Cues index
// points at, or from the first cluster when Cues is absent or has nothing
// for this track.
func (t *Track) Seek(ns int64) (*BlockEntry, error) {
	var be *BlockEntry
	var err error
	if t.segment.cues != nil {
		be, err = t.segment.cues.Seek(ns, t)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}
	if be == nil {
		if be, err = t.GetFirst(); err != nil {
			return nil, err
		}
	}
	var result *BlockEntry
	for be != nil {
		tc, err := be.cluster.Timecode()
		if err != nil {
			return nil, err
		}
		tm := be.block.Time(tc, t.segment.timecodeScale())
		if tm > ns {
			break
		}
		if be.block.TrackNumber() == t.info.Number && t.vetEntry(be) {
			result = be
		}
		be, err = t.GetNext(be)
		if err != nil {
			return nil, err
		}
	}
	if result == nil {
		return nil, ErrNotFound
	}
	return result, nil
}

// Tracks is the Segment's ordered collection of TrackEntry records, per
// Tracks exclusively owns its Track objects.
type Tracks struct {
	list []*Track
}

// All returns every parsed Track, ordered by track number (matching the
// teacher's own sort in parseTracks).
func (ts *Tracks) All() []*Track { return ts.list }

// ByNumber returns the Track with the given track number, or ErrNotFound.
func (ts *Tracks) ByNumber(number uint64) (*Track, error) {
	for _, t := range ts.list {
		if t.info.Number == number {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

// parseTracks parses a Tracks element body into an ordered Tracks
// collection.
func parseTracks(s *Segment, r Reader, bodyPos, bodySize int64) (*Tracks, error) {
	ts := &Tracks{}
	stop := bodyPos + bodySize

	for cur := bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return nil, err
		}
		if child.unknownSize {
			return nil, formatErrorf("Tracks child 0x%X at %d has unknown size", child.id, cur)
		}

		if child.id == idTrackEntry {
			t, err := parseTrackEntry(r, child.bodyPos, child.bodySize)
			if err != nil {
				return nil, err
			}
			t.segment = s
			ts.list = append(ts.list, t)
		}

		cur = child.end()
	}

	sort.Slice(ts.list, func(i, j int) bool { return ts.list[i].info.Number < ts.list[j].info.Number })
	return ts, nil
}

func parseTrackEntry(r Reader, bodyPos, bodySize int64) (*Track, error) {
	t := &Track{}
	stop := bodyPos + bodySize

	for cur := bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return nil, err
		}
		if child.unknownSize {
			return nil, formatErrorf("TrackEntry child 0x%X at %d has unknown size", child.id, cur)
		}

		switch child.id {
		case idTrackNumber:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			t.info.Number = v
		case idTrackUID:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			t.info.UID = v
		case idTrackType:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			t.info.Type = v
		case idTrackName:
			v, err := readStringAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			t.info.NameUTF8 = v
		case idCodecID:
			v, err := readStringAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			t.info.CodecID = v
		case idCodecPrivate:
			v, err := readBytesAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			t.info.CodecPrivate = v
		case idCodecName:
			v, err := readStringAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			t.info.CodecNameUTF8 = v
		case idFlagLacing:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			t.info.Lacing = v != 0
		case idVideo:
			t.info.SettingsStart, t.info.SettingsSize = child.bodyPos, child.bodySize
			vs, err := parseVideoSettings(r, child.bodyPos, child.bodySize)
			if err != nil {
				return nil, err
			}
			t.video = vs
		case idAudio:
			t.info.SettingsStart, t.info.SettingsSize = child.bodyPos, child.bodySize
			as, err := parseAudioSettings(r, child.bodyPos, child.bodySize)
			if err != nil {
				return nil, err
			}
			t.audio = as
		case idContentEncodings:
			encs, err := parseContentEncodings(r, child.bodyPos, child.bodySize)
			if err != nil {
				return nil, err
			}
			t.encodings = encs
		}

		cur = child.end()
	}

	switch t.info.Type {
	case 1:
		t.kind = TrackVideo
	case 2:
		t.kind = TrackAudio
	default:
		t.kind = TrackOther
	}
	return t, nil
}

func parseVideoSettings(r Reader, bodyPos, bodySize int64) (VideoSettings, error) {
	var vs VideoSettings
	stop := bodyPos + bodySize

	for cur := bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return VideoSettings{}, err
		}
		if child.unknownSize {
			return VideoSettings{}, formatErrorf("Video child 0x%X at %d has unknown size", child.id, cur)
		}

		switch child.id {
		case idPixelWidth:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return VideoSettings{}, err
			}
			vs.Width = v
		case idPixelHeight:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return VideoSettings{}, err
			}
			vs.Height = v
		case idFrameRate:
			v, err := readFloatAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return VideoSettings{}, err
			}
			vs.FrameRate = v
		}

		cur = child.end()
	}
	return vs, nil
}

func parseAudioSettings(r Reader, bodyPos, bodySize int64) (AudioSettings, error) {
	var as AudioSettings
	stop := bodyPos + bodySize

	for cur := bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return AudioSettings{}, err
		}
		if child.unknownSize {
			return AudioSettings{}, formatErrorf("Audio child 0x%X at %d has unknown size", child.id, cur)
		}

		switch child.id {
		case idSamplingFrequency:
			v, err := readFloatAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return AudioSettings{}, err
			}
			as.SamplingRate = v
		case idChannels:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return AudioSettings{}, err
			}
			as.Channels = v
		case idBitDepth:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return AudioSettings{}, err
			}
			as.BitDepth = v
		}

		cur = child.end()
	}
	return as, nil
}
