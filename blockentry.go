package matroska

// BlockEntryKind discriminates the three BlockEntry variants: a plain
// SimpleBlock, a BlockGroup, or the sentinel end-of-stream marker. This is
// a tagged union on the kind field instead of an inheritance hierarchy.
type BlockEntryKind int

const (
	BlockEntryKindEOS BlockEntryKind = iota
	BlockEntryKindSimple
	BlockEntryKindGroup
)

// BlockEntry is one entry in a Cluster's block list: either a SimpleBlock,
// a BlockGroup (with reference timecodes and a duration), or the EOS
// sentinel. Cluster and Index are non-owning back-references: Cluster owns
// the BlockEntry, not the other way around.
type BlockEntry struct {
	kind    BlockEntryKind
	cluster *Cluster
	index   int
	block   *Block

	hasPrev     bool
	prev        int64
	hasNext     bool
	next        int64
	hasDuration bool
	duration    int64
}

// Kind reports which of the three variants this entry is.
func (be *BlockEntry) Kind() BlockEntryKind { return be.kind }

// IsEOS reports whether this is the end-of-stream sentinel.
func (be *BlockEntry) IsEOS() bool { return be.kind == BlockEntryKindEOS }

// Cluster returns the (non-owning) Cluster this entry belongs to.
func (be *BlockEntry) Cluster() *Cluster { return be.cluster }

// Index returns this entry's position within its Cluster's entry list.
func (be *BlockEntry) Index() int { return be.index }

// Block returns the entry's owned Block, or nil for the EOS sentinel.
func (be *BlockEntry) Block() *Block { return be.block }

// PrevTimecode returns a BlockGroup's previous reference timecode (relative
// to the block's own time), if one was present on the wire.
func (be *BlockEntry) PrevTimecode() (int64, bool) { return be.prev, be.hasPrev }

// NextTimecode returns a BlockGroup's next reference timecode, if present.
func (be *BlockEntry) NextTimecode() (int64, bool) { return be.next, be.hasNext }

// Duration returns a BlockGroup's BlockDuration, if present.
func (be *BlockEntry) Duration() (int64, bool) { return be.duration, be.hasDuration }
