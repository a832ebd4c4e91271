package matroska

// SegmentInfo holds the Info element's metadata: timecode scale, duration,
// and the app/title strings.
type SegmentInfo struct {
	// TimecodeScale is nanoseconds per raw tick; multiplying a raw
	// Cluster/Block timecode by this yields absolute nanoseconds.
	TimecodeScale uint64
	// Duration is scaled into nanoseconds already (raw Duration * TimecodeScale).
	Duration   int64
	Title      string
	MuxingApp  string
	WritingApp string

	elementStart int64
	elementSize  int64
}

// parseSegmentInfo parses an Info element whose body spans [bodyPos, bodyPos+bodySize).
func parseSegmentInfo(r Reader, bodyPos, bodySize int64) (*SegmentInfo, error) {
	info := &SegmentInfo{TimecodeScale: 1000000}

	var rawDuration float64
	stop := bodyPos + bodySize
	for cur := bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return nil, err
		}
		if child.unknownSize {
			return nil, formatErrorf("Info child 0x%X at %d has unknown size", child.id, cur)
		}

		switch child.id {
		case idTimecodeScale:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			info.TimecodeScale = v
		case idDuration:
			v, err := readFloatAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			rawDuration = v
		case idTitle:
			v, err := readStringAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			info.Title = v
		case idMuxingApp:
			v, err := readStringAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			info.MuxingApp = v
		case idWritingApp:
			v, err := readStringAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return nil, err
			}
			info.WritingApp = v
		}

		cur = child.end()
	}

	info.Duration = int64(rawDuration * float64(info.TimecodeScale))
	return info, nil
}
