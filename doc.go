// Package matroska implements an incremental, random-access parser for the
// Matroska and WebM container formats.
//
// Unlike a conventional decoder that assumes the whole file is already on
// disk, this package is built around a Reader capability that may only have
// part of its data available at any given moment (a file still being
// downloaded or muxed, for instance). Every parsing entry point either makes
// forward progress or reports how many more bytes it needs; it never blocks
// and never loses state across a "need more" result.
//
// The entry point is Segment, opened with Open over anything implementing
// Reader. Once open, call ParseHeaders to discover the segment's SeekHead,
// Info, Tracks and Cues, then LoadCluster/ParseNext to walk clusters and
// Track.GetFirst/GetNext or Cues.Find+GetBlock to walk blocks within them.
//
// Example usage:
//
//	seg, err := matroska.Open(reader, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for {
//	    err := seg.ParseHeaders()
//	    if err == nil {
//	        break
//	    }
//	    var needMore *matroska.NeedMoreError
//	    if errors.As(err, &needMore) {
//	        waitForMoreBytes(needMore.N)
//	        continue
//	    }
//	    log.Fatal(err)
//	}
package matroska
