package matroska

// SeekHead holds the entries of a parsed SeekHead element: a map from
// element id to its absolute position, plus the Void spans observed
// while scanning it (kept only to describe file layout faithfully).
type SeekHead struct {
	Entries []SeekHeadEntry
	Voids   []VoidElement
}

// SeekHeadEntry maps an element id to its absolute position within the
// segment payload.
type SeekHeadEntry struct {
	ID  uint64
	Pos int64
}

// VoidElement describes the absolute span of a Void element encountered
// while parsing a SeekHead, for layout fidelity only.
type VoidElement struct {
	Start int64
	Size  int64
}

// parseSeekHead parses a SeekHead element body spanning [bodyPos, bodyPos+bodySize).
// segmentStart is the absolute offset of the enclosing Segment's payload,
// since Seek entries record positions relative to it.
func parseSeekHead(r Reader, bodyPos, bodySize, segmentStart int64) (*SeekHead, error) {
	sh := &SeekHead{}
	stop := bodyPos + bodySize

	for cur := bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return nil, err
		}
		if child.unknownSize {
			return nil, formatErrorf("SeekHead child 0x%X at %d has unknown size", child.id, cur)
		}

		switch child.id {
		case idSeek:
			entry, err := parseSeekEntry(r, child.bodyPos, child.bodySize, segmentStart)
			if err != nil {
				return nil, err
			}
			sh.Entries = append(sh.Entries, entry)
		case idVoid:
			sh.Voids = append(sh.Voids, VoidElement{Start: cur, Size: child.end() - cur})
		}

		cur = child.end()
	}

	return sh, nil
}

func parseSeekEntry(r Reader, bodyPos, bodySize, segmentStart int64) (SeekHeadEntry, error) {
	var entry SeekHeadEntry
	stop := bodyPos + bodySize

	for cur := bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return SeekHeadEntry{}, err
		}
		if child.unknownSize {
			return SeekHeadEntry{}, formatErrorf("Seek child 0x%X at %d has unknown size", child.id, cur)
		}

		switch child.id {
		case idSeekID:
			// SeekID stores the target's canonical id as raw big-endian
			// bytes with the length marker retained, same as any other
			// element id.
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return SeekHeadEntry{}, err
			}
			entry.ID = v
		case idSeekPos:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return SeekHeadEntry{}, err
			}
			entry.Pos = segmentStart + int64(v)
		}

		cur = child.end()
	}

	return entry, nil
}
