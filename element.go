package matroska

// element describes one EBML tag-length-value header: its canonical id
// (marker bit retained), where its body starts, and its body length (or
// "unknown", encoded as unknownSize=true with size meaningless).
type element struct {
	id         uint64
	headerLen  int64 // bytes consumed by id+size
	bodyPos    int64
	bodySize   int64
	unknownSize bool
}

// end returns the absolute position just past this element's body, or -1 if
// its size is unknown.
func (e element) end() int64 {
	if e.unknownSize {
		return -1
	}
	return e.bodyPos + e.bodySize
}

// readElementHeader reads the id+size pair at pos and validates that, when
// both the element's size and stop are known, the body does not extend past
// stop. stop < 0 means "no known upper bound yet" (e.g. an enclosing
// unknown-size Cluster).
//
// Unknown ids are not rejected here: the caller decides
// whether to interpret or skip the element id.
func readElementHeader(r Reader, pos, stop int64) (element, error) {
	id, idLen, err := readVIntID(r, pos)
	if err != nil {
		return element{}, err
	}

	size, sizeLen, unknown, err := readVIntSize(r, pos+int64(idLen))
	if err != nil {
		return element{}, err
	}

	headerLen := int64(idLen + sizeLen)
	bodyPos := pos + headerLen

	if !unknown && stop >= 0 && bodyPos+int64(size) > stop {
		return element{}, formatErrorf("element 0x%X at %d: body extends past container end", id, pos)
	}

	return element{
		id:          id,
		headerLen:   headerLen,
		bodyPos:     bodyPos,
		bodySize:    int64(size),
		unknownSize: unknown,
	}, nil
}

// matchElement reads the element header at pos and reports whether its id
// equals expected. On a match, el is populated and matched is true; the
// caller is then responsible for advancing its own cursor past el.end(). On
// a mismatch (matched == false, err == nil) the caller's cursor must stay at
// pos — this function never mutates caller state, it only reports.
func matchElement(r Reader, pos, stop int64, expected uint64) (el element, matched bool, err error) {
	el, err = readElementHeader(r, pos, stop)
	if err != nil {
		return element{}, false, err
	}
	return el, el.id == expected, nil
}
