package main

import "os"

// fileReader adapts an *os.File, already fully written to disk, to
// matroska.Reader. Its entire length is available immediately — there is
// no use for NeedMore semantics when reading a file that is not still
// being written — but it still implements the contract the parser expects
// from any transport.
type fileReader struct {
	f    *os.File
	size int64
}

func newFileReader(f *os.File) (*fileReader, error) {
	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	return &fileReader{f: f, size: st.Size()}, nil
}

func (r *fileReader) ReadAt(pos, length int64, buf []byte) error {
	_, err := r.f.ReadAt(buf[:length], pos)
	return err
}

func (r *fileReader) Length() (total, available int64) {
	return r.size, r.size
}
