package matroska

import (
	"testing"

	"github.com/luispater/mkvdemux/memreader"
)

func simpleBlockElem(track uint64, timecode int16, flags byte, payload []byte) []byte {
	return elem(idSimpleBlock, buildBlockBody(track, timecode, flags, payload))
}

func TestClusterTimecodeAndEntries(t *testing.T) {
	body := cat(
		elem(idTimecode, uintBody(1000)),
		simpleBlockElem(1, 0, 0x80, []byte{1, 2, 3}),
		simpleBlockElem(1, 10, 0x00, []byte{4, 5, 6}),
	)
	raw := elem(idCluster, body)
	r := memreader.New(raw)

	seg := &Segment{r: r}
	c := &Cluster{segment: seg, elementStart: 0, elementSize: int64(len(raw))}
	el, err := readElementHeader(r, 0, int64(len(raw)))
	if err != nil {
		t.Fatalf("readElementHeader: %v", err)
	}
	c.bodyPos = el.bodyPos

	tc, err := c.Timecode()
	if err != nil {
		t.Fatalf("Timecode: %v", err)
	}
	if tc != 1000 {
		t.Fatalf("Timecode = %d, want 1000", tc)
	}

	first, err := c.GetFirst()
	if err != nil || first == nil {
		t.Fatalf("GetFirst: %v, %v", first, err)
	}
	if !first.Block().IsKey() {
		t.Fatal("expected first block to be a keyframe")
	}

	second, err := c.GetNext(first)
	if err != nil || second == nil {
		t.Fatalf("GetNext: %v, %v", second, err)
	}
	if second.Block().TrackNumber() != 1 {
		t.Fatalf("second block track = %d, want 1", second.Block().TrackNumber())
	}

	third, err := c.GetNext(second)
	if err != nil {
		t.Fatalf("GetNext at end: %v", err)
	}
	if third != nil {
		t.Fatal("expected nil at end of cluster")
	}

	if c.EntryCount() != 2 {
		t.Fatalf("EntryCount = %d, want 2", c.EntryCount())
	}
}

func TestClusterTimecodeDefaultsToZeroWhenAbsent(t *testing.T) {
	body := simpleBlockElem(1, 0, 0x80, []byte{1})
	raw := elem(idCluster, body)
	r := memreader.New(raw)

	el, _ := readElementHeader(r, 0, int64(len(raw)))
	seg := &Segment{r: r}
	c := &Cluster{segment: seg, elementStart: 0, elementSize: int64(len(raw)), bodyPos: el.bodyPos}

	tc, err := c.Timecode()
	if err != nil {
		t.Fatalf("Timecode: %v", err)
	}
	if tc != 0 {
		t.Fatalf("Timecode = %d, want 0 (default)", tc)
	}
}

func TestClusterBlockGroupWithDuration(t *testing.T) {
	group := elem(idBlockGroup, cat(
		elem(idBlock, buildBlockBody(1, 0, 0x00, []byte{9})),
		elem(idBlockDuration, uintBody(40)),
	))
	raw := elem(idCluster, group)
	r := memreader.New(raw)

	el, _ := readElementHeader(r, 0, int64(len(raw)))
	seg := &Segment{r: r}
	c := &Cluster{segment: seg, elementStart: 0, elementSize: int64(len(raw)), bodyPos: el.bodyPos}

	be, err := c.GetFirst()
	if err != nil || be == nil {
		t.Fatalf("GetFirst: %v, %v", be, err)
	}
	if be.Kind() != BlockEntryKindGroup {
		t.Fatalf("Kind = %v, want Group", be.Kind())
	}
	dur, ok := be.Duration()
	if !ok || dur != 40 {
		t.Fatalf("Duration = %d, %v, want 40, true", dur, ok)
	}
}

func TestClusterBlockGroupWithReferenceBlocks(t *testing.T) {
	group := elem(idBlockGroup, cat(
		elem(idReferenceBlock, intBody(-80)),
		elem(idBlock, buildBlockBody(1, 0, 0x00, []byte{9})),
		elem(idReferenceBlock, intBody(40)),
	))
	raw := elem(idCluster, group)
	r := memreader.New(raw)

	el, _ := readElementHeader(r, 0, int64(len(raw)))
	seg := &Segment{r: r}
	c := &Cluster{segment: seg, elementStart: 0, elementSize: int64(len(raw)), bodyPos: el.bodyPos}

	be, err := c.GetFirst()
	if err != nil || be == nil {
		t.Fatalf("GetFirst: %v, %v", be, err)
	}
	prev, ok := be.PrevTimecode()
	if !ok || prev != -80 {
		t.Fatalf("PrevTimecode = %d, %v, want -80, true", prev, ok)
	}
	next, ok := be.NextTimecode()
	if !ok || next != 40 {
		t.Fatalf("NextTimecode = %d, %v, want 40, true", next, ok)
	}
}
