package matroska

import (
	"testing"

	"github.com/luispater/mkvdemux/memreader"
)

func TestParseEBMLHeaderDefaults(t *testing.T) {
	raw := elem(idEBML, cat(
		elem(idEBMLDocType, strBody("matroska")),
	))
	r := memreader.New(raw)

	h, err := ParseEBMLHeader(r, 0)
	if err != nil {
		t.Fatalf("ParseEBMLHeader: %v", err)
	}
	if h.Version != 1 || h.ReadVersion != 1 || h.MaxIDLength != 4 || h.MaxSizeLength != 8 {
		t.Fatalf("unexpected defaults: %+v", h)
	}
	if h.DocType != "matroska" {
		t.Fatalf("DocType = %q, want matroska", h.DocType)
	}
	if h.SegmentPos != int64(len(raw)) {
		t.Fatalf("segmentPos = %d, want %d", h.SegmentPos, len(raw))
	}
}

func TestParseEBMLHeaderSkipsLeadingVoid(t *testing.T) {
	void := elem(idVoid, []byte{0, 0, 0})
	header := elem(idEBML, elem(idEBMLDocType, strBody("webm")))
	raw := cat(void, header)

	r := memreader.New(raw)
	h, err := ParseEBMLHeader(r, 0)
	if err != nil {
		t.Fatalf("ParseEBMLHeader: %v", err)
	}
	if h.DocType != "webm" {
		t.Fatalf("DocType = %q, want webm", h.DocType)
	}
	if h.SegmentPos != int64(len(raw)) {
		t.Fatalf("segmentPos = %d, want %d", h.SegmentPos, len(raw))
	}
}

func TestParseEBMLHeaderExplicitFields(t *testing.T) {
	raw := elem(idEBML, cat(
		elem(idEBMLVersion, uintBody(1)),
		elem(idEBMLMaxIDLength, uintBody(4)),
		elem(idEBMLMaxSizeLength, uintBody(8)),
		elem(idEBMLDocType, strBody("matroska")),
		elem(idEBMLDocTypeVersion, uintBody(4)),
	))
	r := memreader.New(raw)

	h, err := ParseEBMLHeader(r, 0)
	if err != nil {
		t.Fatalf("ParseEBMLHeader: %v", err)
	}
	if h.DocTypeVersion != 4 {
		t.Fatalf("DocTypeVersion = %d, want 4", h.DocTypeVersion)
	}
}

func TestParseSegmentInfo(t *testing.T) {
	body := cat(
		elem(idTimecodeScale, uintBody(1000000)),
		elem(idDuration, []byte{0x40, 0x59, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}), // 100.0 as float64
		elem(idTitle, strBody("title")),
		elem(idMuxingApp, strBody("mux")),
		elem(idWritingApp, strBody("write")),
	)
	r := memreader.New(body)

	info, err := parseSegmentInfo(r, 0, int64(len(body)))
	if err != nil {
		t.Fatalf("parseSegmentInfo: %v", err)
	}
	if info.TimecodeScale != 1000000 {
		t.Fatalf("TimecodeScale = %d, want 1000000", info.TimecodeScale)
	}
	if info.Duration != 100*1000000 {
		t.Fatalf("Duration = %d, want %d", info.Duration, 100*1000000)
	}
	if info.Title != "title" || info.MuxingApp != "mux" || info.WritingApp != "write" {
		t.Fatalf("unexpected strings: %+v", info)
	}
}

func TestParseSegmentInfoDefaultsScale(t *testing.T) {
	body := elem(idTitle, strBody("x"))
	r := memreader.New(body)
	info, err := parseSegmentInfo(r, 0, int64(len(body)))
	if err != nil {
		t.Fatalf("parseSegmentInfo: %v", err)
	}
	if info.TimecodeScale != 1000000 {
		t.Fatalf("TimecodeScale = %d, want default 1000000", info.TimecodeScale)
	}
}

func TestParseSeekHead(t *testing.T) {
	entry := elem(idSeek, cat(
		elem(idSeekID, eid(idInfo)),
		elem(idSeekPos, uintBody(42)),
	))
	body := entry
	r := memreader.New(body)

	sh, err := parseSeekHead(r, 0, int64(len(body)), 1000)
	if err != nil {
		t.Fatalf("parseSeekHead: %v", err)
	}
	if len(sh.Entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(sh.Entries))
	}
	if sh.Entries[0].ID != idInfo {
		t.Fatalf("entry id = %#x, want %#x", sh.Entries[0].ID, idInfo)
	}
	if sh.Entries[0].Pos != 1000+42 {
		t.Fatalf("entry pos = %d, want %d", sh.Entries[0].Pos, 1000+42)
	}
}

func TestParseContentEncodings(t *testing.T) {
	body := elem(idContentEncoding, cat(
		elem(idContentEncodingOrder, uintBody(0)),
		elem(idContentEncodingScope, uintBody(1)),
		elem(idContentEncodingType, uintBody(0)),
		elem(idContentCompression, elem(idContentCompAlgo, uintBody(0))),
	))
	r := memreader.New(body)

	encs, err := parseContentEncodings(r, 0, int64(len(body)))
	if err != nil {
		t.Fatalf("parseContentEncodings: %v", err)
	}
	if len(encs) != 1 {
		t.Fatalf("got %d encodings, want 1", len(encs))
	}
	if len(encs[0].Compressions) != 1 {
		t.Fatalf("got %d compressions, want 1", len(encs[0].Compressions))
	}
}
