package matroska

// ContentEncoding describes one ContentEncodings entry: whether (and how)
// a track's frames are compressed or encrypted. These are
// parsed as data only — nothing in this package applies the described
// transform to frame bytes.
type ContentEncoding struct {
	Order uint64
	Scope uint64
	Type  uint64

	Compressions []ContentCompression
	Encryptions  []ContentEncryption
}

// ContentCompression is one ContentCompression descriptor.
type ContentCompression struct {
	Algo     uint64
	Settings []byte
}

// ContentEncryption is one ContentEncryption descriptor.
type ContentEncryption struct {
	Algo        uint64
	KeyID       []byte
	Signature   []byte
	SigKeyID    []byte
	SigAlgo     uint64
	SigHashAlgo uint64
}

// parseContentEncodings parses a ContentEncodings element body.
func parseContentEncodings(r Reader, bodyPos, bodySize int64) ([]ContentEncoding, error) {
	var out []ContentEncoding
	stop := bodyPos + bodySize

	for cur := bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return nil, err
		}
		if child.unknownSize {
			return nil, formatErrorf("ContentEncodings child 0x%X at %d has unknown size", child.id, cur)
		}

		if child.id == idContentEncoding {
			ce, err := parseContentEncoding(r, child.bodyPos, child.bodySize)
			if err != nil {
				return nil, err
			}
			out = append(out, ce)
		}

		cur = child.end()
	}

	return out, nil
}

func parseContentEncoding(r Reader, bodyPos, bodySize int64) (ContentEncoding, error) {
	ce := ContentEncoding{}
	stop := bodyPos + bodySize

	for cur := bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return ContentEncoding{}, err
		}
		if child.unknownSize {
			return ContentEncoding{}, formatErrorf("ContentEncoding child 0x%X at %d has unknown size", child.id, cur)
		}

		switch child.id {
		case idContentEncodingOrder:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return ContentEncoding{}, err
			}
			ce.Order = v
		case idContentEncodingScope:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return ContentEncoding{}, err
			}
			ce.Scope = v
		case idContentEncodingType:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return ContentEncoding{}, err
			}
			ce.Type = v
		case idContentCompression:
			cc, err := parseContentCompression(r, child.bodyPos, child.bodySize)
			if err != nil {
				return ContentEncoding{}, err
			}
			ce.Compressions = append(ce.Compressions, cc)
		case idContentEncryption:
			enc, err := parseContentEncryption(r, child.bodyPos, child.bodySize)
			if err != nil {
				return ContentEncoding{}, err
			}
			ce.Encryptions = append(ce.Encryptions, enc)
		}

		cur = child.end()
	}

	return ce, nil
}

func parseContentCompression(r Reader, bodyPos, bodySize int64) (ContentCompression, error) {
	cc := ContentCompression{}
	stop := bodyPos + bodySize

	for cur := bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return ContentCompression{}, err
		}
		if child.unknownSize {
			return ContentCompression{}, formatErrorf("ContentCompression child 0x%X at %d has unknown size", child.id, cur)
		}

		switch child.id {
		case idContentCompAlgo:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return ContentCompression{}, err
			}
			cc.Algo = v
		case idContentCompSettings:
			v, err := readBytesAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return ContentCompression{}, err
			}
			cc.Settings = v
		}

		cur = child.end()
	}

	return cc, nil
}

func parseContentEncryption(r Reader, bodyPos, bodySize int64) (ContentEncryption, error) {
	enc := ContentEncryption{}
	stop := bodyPos + bodySize

	for cur := bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return ContentEncryption{}, err
		}
		if child.unknownSize {
			return ContentEncryption{}, formatErrorf("ContentEncryption child 0x%X at %d has unknown size", child.id, cur)
		}

		switch child.id {
		case idContentEncAlgo:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return ContentEncryption{}, err
			}
			enc.Algo = v
		case idContentEncKeyID:
			v, err := readBytesAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return ContentEncryption{}, err
			}
			enc.KeyID = v
		case idContentSignature:
			v, err := readBytesAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return ContentEncryption{}, err
			}
			enc.Signature = v
		case idContentSigKeyID:
			v, err := readBytesAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return ContentEncryption{}, err
			}
			enc.SigKeyID = v
		case idContentSigAlgo:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return ContentEncryption{}, err
			}
			enc.SigAlgo = v
		case idContentSigHashAlgo:
			v, err := readUIntAt(r, child.bodyPos, int(child.bodySize))
			if err != nil {
				return ContentEncryption{}, err
			}
			enc.SigHashAlgo = v
		}

		cur = child.end()
	}

	return enc, nil
}
