package matroska

// Canonical (marker-retained) EBML/Matroska element ids.
const (
	idEBML                 = 0x1A45DFA3
	idEBMLVersion          = 0x4286
	idEBMLReadVersion      = 0x42F7
	idEBMLMaxIDLength      = 0x42F2
	idEBMLMaxSizeLength    = 0x42F3
	idEBMLDocType          = 0x4282
	idEBMLDocTypeVersion   = 0x4287
	idEBMLDocTypeReadVer   = 0x4285

	idVoid = 0xEC
	idCRC32 = 0xBF

	idSegment = 0x18538067

	idSeekHead = 0x114D9B74
	idSeek     = 0x4DBB
	idSeekID   = 0x53AB
	idSeekPos  = 0x53AC

	idInfo           = 0x1549A966
	idTimecodeScale  = 0x2AD7B1
	idDuration       = 0x4489
	idTitle          = 0x7BA9
	idMuxingApp      = 0x4D80
	idWritingApp     = 0x5741

	idTracks         = 0x1654AE6B
	idTrackEntry     = 0xAE
	idTrackNumber    = 0xD7
	idTrackUID       = 0x73C5
	idTrackType      = 0x83
	idTrackName      = 0x536E
	idLanguage       = 0x22B59C
	idCodecID        = 0x86
	idCodecPrivate   = 0x63A2
	idCodecName      = 0x258688
	idFlagLacing     = 0x9C
	idVideo          = 0xE0
	idAudio          = 0xE1

	idPixelWidth  = 0xB0
	idPixelHeight = 0xBA
	idFrameRate   = 0x2383E3

	idSamplingFrequency = 0xB5
	idChannels          = 0x9F
	idBitDepth          = 0x6264

	idContentEncodings        = 0x6D80
	idContentEncoding         = 0x6240
	idContentEncodingOrder    = 0x5031
	idContentEncodingScope    = 0x5032
	idContentEncodingType     = 0x5033
	idContentCompression      = 0x5034
	idContentCompAlgo         = 0x4254
	idContentCompSettings     = 0x4255
	idContentEncryption       = 0x5035
	idContentEncAlgo          = 0x47E1
	idContentEncKeyID         = 0x47E2
	idContentSignature        = 0x47E3
	idContentSigKeyID         = 0x47E4
	idContentSigAlgo          = 0x47E5
	idContentSigHashAlgo      = 0x47E6

	idCluster     = 0x1F43B675
	idTimecode    = 0xE7
	idSimpleBlock = 0xA3
	idBlockGroup  = 0xA0
	idBlock       = 0xA1
	idBlockDuration  = 0x9B
	idReferenceBlock = 0xFB
	idDiscardPadding = 0x75A2

	idCues          = 0x1C53BB6B
	idCuePoint      = 0xBB
	idCueTime       = 0xB3
	idCueTrackPositions = 0xB7
	idCueTrack      = 0xF7
	idCueClusterPos = 0xF1
	idCueBlockNumber = 0x5378

	idChapters    = 0x1043A770
	idTags        = 0x1254C367
	idAttachments = 0x1941A469
)

// EBMLHeader is the document preamble parsed from offset 0 of the source.
type EBMLHeader struct {
	Version            uint64
	ReadVersion        uint64
	MaxIDLength        uint64
	MaxSizeLength      uint64
	DocType            string
	DocTypeVersion     uint64
	DocTypeReadVersion uint64

	// SegmentPos is the absolute offset of the byte immediately following
	// this header — where a caller should look for the Segment element
	// (after skipping any leading Void/CRC-32). Open uses this directly.
	SegmentPos int64
}

// ParseEBMLHeader locates and parses the EBML master element starting at
// pos, skipping any leading Void or CRC-32 elements first. Fields absent
// from the wire take the standard EBML defaults.
func ParseEBMLHeader(r Reader, pos int64) (*EBMLHeader, error) {
	for {
		el, err := readElementHeader(r, pos, -1)
		if err != nil {
			return nil, err
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

	el, matched, err := matchElement(r, pos, -1, idEBML)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, formatErrorf("expected EBML header at %d, got id 0x%X", pos, el.id)
	}
	if el.unknownSize {
		return nil, formatErrorf("EBML header at %d has unknown size", pos)
	}

	h := &EBMLHeader{
		Version:            1,
		ReadVersion:        1,
		MaxIDLength:        4,
		MaxSizeLength:      8,
		DocTypeVersion:     1,
		DocTypeReadVersion: 1,
	}

	stop := el.end()
	for cur := el.bodyPos; cur < stop; {
		child, err := readElementHeader(r, cur, stop)
		if err != nil {
			return nil, err
		}
		if child.unknownSize {
			return nil, formatErrorf("EBML header child 0x%X at %d has unknown size", child.id, cur)
		}

		switch child.id {
		case idEBMLVersion:
			h.Version, err = readUIntAt(r, child.bodyPos, int(child.bodySize))
		case idEBMLReadVersion:
			h.ReadVersion, err = readUIntAt(r, child.bodyPos, int(child.bodySize))
		case idEBMLMaxIDLength:
			h.MaxIDLength, err = readUIntAt(r, child.bodyPos, int(child.bodySize))
		case idEBMLMaxSizeLength:
			h.MaxSizeLength, err = readUIntAt(r, child.bodyPos, int(child.bodySize))
		case idEBMLDocType:
			h.DocType, err = readStringAt(r, child.bodyPos, int(child.bodySize))
		case idEBMLDocTypeVersion:
			h.DocTypeVersion, err = readUIntAt(r, child.bodyPos, int(child.bodySize))
		case idEBMLDocTypeReadVer:
			h.DocTypeReadVersion, err = readUIntAt(r, child.bodyPos, int(child.bodySize))
		}
		if err != nil {
			return nil, err
		}

		cur = child.end()
	}

	h.SegmentPos = stop
	return h, nil
}
