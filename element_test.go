package matroska

import (
	"testing"

	"github.com/luispater/mkvdemux/memreader"
)

func TestReadElementHeaderKnownSize(t *testing.T) {
	raw := elem(idVoid, []byte{1, 2, 3, 4, 5})
	r := memreader.New(raw)

	el, err := readElementHeader(r, 0, int64(len(raw)))
	if err != nil {
		t.Fatalf("readElementHeader: %v", err)
	}
	if el.id != idVoid {
		t.Fatalf("id = %#x, want %#x", el.id, idVoid)
	}
	if el.bodySize != 5 {
		t.Fatalf("bodySize = %d, want 5", el.bodySize)
	}
	if el.end() != int64(len(raw)) {
		t.Fatalf("end() = %d, want %d", el.end(), len(raw))
	}
}

func TestReadElementHeaderOverrunsStopIsFormatError(t *testing.T) {
	raw := elem(idVoid, []byte{1, 2, 3, 4, 5})
	r := memreader.New(raw)

	_, err := readElementHeader(r, 0, int64(len(raw))-1)
	if _, ok := err.(*FormatError); !ok {
		t.Fatalf("expected *FormatError, got %T: %v", err, err)
	}
}

func TestReadElementHeaderUnknownSize(t *testing.T) {
	raw := unknownElem(idCluster, nil)
	r := memreader.New(raw)

	el, err := readElementHeader(r, 0, -1)
	if err != nil {
		t.Fatalf("readElementHeader: %v", err)
	}
	if !el.unknownSize {
		t.Fatal("expected unknownSize = true")
	}
	if el.end() != -1 {
		t.Fatalf("end() = %d, want -1 for unknown size", el.end())
	}
}

func TestMatchElement(t *testing.T) {
	raw := elem(idInfo, []byte{9})
	r := memreader.New(raw)

	el, matched, err := matchElement(r, 0, int64(len(raw)), idInfo)
	if err != nil || !matched {
		t.Fatalf("matchElement(idInfo) = %v, %v, want true, nil", matched, err)
	}
	if el.bodySize != 1 {
		t.Fatalf("bodySize = %d, want 1", el.bodySize)
	}

	_, matched, err = matchElement(r, 0, int64(len(raw)), idTracks)
	if err != nil {
		t.Fatalf("matchElement(idTracks): %v", err)
	}
	if matched {
		t.Fatal("expected matched=false for mismatched id")
	}
}

func TestReadElementHeaderNeedMoreDoesNotAdvance(t *testing.T) {
	raw := elem(idVoid, []byte{1, 2, 3})
	r := memreader.NewEmpty(raw)

	_, err := readElementHeader(r, 0, -1)
	if _, ok := IsNeedMore(err); !ok {
		t.Fatalf("expected NeedMoreError with nothing available, got %v", err)
	}

	r.SetAvailable(int64(len(raw)))
	el, err := readElementHeader(r, 0, -1)
	if err != nil {
		t.Fatalf("readElementHeader after growth: %v", err)
	}
	if el.id != idVoid || el.bodySize != 3 {
		t.Fatalf("got id=%#x bodySize=%d, want idVoid/3", el.id, el.bodySize)
	}
}
