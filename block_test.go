package matroska

import (
	"testing"

	"github.com/luispater/mkvdemux/memreader"
)

// buildBlockBody hand-assembles a Block/SimpleBlock payload: track number
// VINT (marker cleared, like a size), 16-bit signed timecode, 1 flag byte,
// then the raw lacing payload.
func buildBlockBody(track uint64, timecode int16, flags byte, payload []byte) []byte {
	out := vsize(track)
	out = append(out, byte(timecode>>8), byte(timecode))
	out = append(out, flags)
	out = append(out, payload...)
	return out
}

func TestParseBlockPayloadNoLacing(t *testing.T) {
	body := buildBlockBody(1, 5, 0x00, []byte{0xAA, 0xBB, 0xCC})
	r := memreader.New(body)

	blk, err := parseBlockPayload(r, 0, int64(len(body)))
	if err != nil {
		t.Fatalf("parseBlockPayload: %v", err)
	}
	if blk.TrackNumber() != 1 {
		t.Fatalf("TrackNumber = %d, want 1", blk.TrackNumber())
	}
	if blk.Lacing() != LacingNone {
		t.Fatalf("Lacing = %v, want None", blk.Lacing())
	}
	if blk.FrameCount() != 1 {
		t.Fatalf("FrameCount = %d, want 1", blk.FrameCount())
	}
	data, err := blk.Frame(0).Read(r)
	if err != nil || string(data) != "\xAA\xBB\xCC" {
		t.Fatalf("frame data = %v %v, want AA BB CC", data, err)
	}
}

func TestParseBlockPayloadFixedLacing(t *testing.T) {
	// Flags bit1-2 = 0b10 (Fixed), 3 frames of 2 bytes each, 1 size byte (2 => numFrames-1).
	payload := []byte{2, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	body := buildBlockBody(1, 0, 0x04, payload) // bits 1-2 = 10 => 0x04
	r := memreader.New(body)

	blk, err := parseBlockPayload(r, 0, int64(len(body)))
	if err != nil {
		t.Fatalf("parseBlockPayload: %v", err)
	}
	if blk.Lacing() != LacingFixed {
		t.Fatalf("Lacing = %v, want Fixed", blk.Lacing())
	}
	if blk.FrameCount() != 3 {
		t.Fatalf("FrameCount = %d, want 3", blk.FrameCount())
	}
	for i := 0; i < 3; i++ {
		if blk.Frame(i).Len != 2 {
			t.Fatalf("frame %d len = %d, want 2", i, blk.Frame(i).Len)
		}
	}
}

func TestParseBlockPayloadFixedLacingBadSum(t *testing.T) {
	// 8 data bytes after the count byte cannot divide evenly into 3 frames.
	payload := []byte{2, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	body := buildBlockBody(1, 0, 0x04, payload)
	r := memreader.New(body)

	_, err := parseBlockPayload(r, 0, int64(len(body)))
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("expected *FormatError for uneven fixed lacing, got %T: %v", err, err)
	}
}

func TestParseBlockPayloadXiphLacing(t *testing.T) {
	// 2 frames: sizes 255+10=265 and (implicit remainder). flags bits1-2=01 (Xiph) => 0x02.
	frame0 := make([]byte, 265)
	frame1 := []byte{0x09, 0x08, 0x07}
	sizeBytes := []byte{0xFF, 10} // encodes 265
	payload := append([]byte{1}, sizeBytes...)
	payload = append(payload, frame0...)
	payload = append(payload, frame1...)

	body := buildBlockBody(1, 0, 0x02, payload)
	r := memreader.New(body)

	blk, err := parseBlockPayload(r, 0, int64(len(body)))
	if err != nil {
		t.Fatalf("parseBlockPayload: %v", err)
	}
	if blk.FrameCount() != 2 {
		t.Fatalf("FrameCount = %d, want 2", blk.FrameCount())
	}
	if blk.Frame(0).Len != 265 {
		t.Fatalf("frame0 len = %d, want 265", blk.Frame(0).Len)
	}
	if blk.Frame(1).Len != 3 {
		t.Fatalf("frame1 len = %d, want 3", blk.Frame(1).Len)
	}
}

func TestParseBlockPayloadEBMLLacing(t *testing.T) {
	// 3 frames, first size = 10 (VInt 1 byte), delta-encoded subsequent sizes.
	// flags bits1-2 = 11 (EBML) => 0x06.
	first := vsize(10)
	// delta = 0 means next size equals first: raw = bias where bias = 2^(7*len-1)-1 for len=1 => 63
	delta := vsize(63)
	frame0 := make([]byte, 10)
	frame1 := make([]byte, 10)
	frame2 := make([]byte, 5) // remainder

	payload := append([]byte{2}, first...)
	payload = append(payload, delta...)
	payload = append(payload, frame0...)
	payload = append(payload, frame1...)
	payload = append(payload, frame2...)

	body := buildBlockBody(1, 0, 0x06, payload)
	r := memreader.New(body)

	blk, err := parseBlockPayload(r, 0, int64(len(body)))
	if err != nil {
		t.Fatalf("parseBlockPayload: %v", err)
	}
	if blk.FrameCount() != 3 {
		t.Fatalf("FrameCount = %d, want 3", blk.FrameCount())
	}
	if blk.Frame(0).Len != 10 || blk.Frame(1).Len != 10 || blk.Frame(2).Len != 5 {
		t.Fatalf("frame lens = %d,%d,%d, want 10,10,5", blk.Frame(0).Len, blk.Frame(1).Len, blk.Frame(2).Len)
	}
}

func TestBlockTimeAndKeyFlag(t *testing.T) {
	body := buildBlockBody(7, 3, 0x80, []byte{1, 2})
	r := memreader.New(body)

	blk, err := parseBlockPayload(r, 0, int64(len(body)))
	if err != nil {
		t.Fatalf("parseBlockPayload: %v", err)
	}
	if !blk.IsKey() {
		t.Fatal("expected IsKey() = true")
	}
	if blk.Timecode(100) != 103 {
		t.Fatalf("Timecode(100) = %d, want 103", blk.Timecode(100))
	}
	if blk.Time(100, 1000) != 103000 {
		t.Fatalf("Time(100, 1000) = %d, want 103000", blk.Time(100, 1000))
	}
}
