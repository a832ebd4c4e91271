package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luispater/mkvdemux"
)

var (
	outputDir string
)

var rootCmd = &cobra.Command{
	Use:   "mkvextract <file>",
	Short: "Demux a Matroska/WebM file's tracks into per-track elementary streams.",
	Args:  cobra.ExactArgs(1),
	RunE:  run,
}

func main() {
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "directory to write per-track output files into")
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	inputFile := args[0]

	f, err := os.Open(inputFile)
	if err != nil {
		return fmt.Errorf("opening %s: %w", inputFile, err)
	}
	defer func() { _ = f.Close() }()

	r, err := newFileReader(f)
	if err != nil {
		return err
	}

	seg, err := matroska.Open(r, 0)
	if err != nil {
		return fmt.Errorf("opening segment: %w", err)
	}
	if err := seg.ParseHeaders(); err != nil {
		return fmt.Errorf("parsing headers: %w", err)
	}

	info := seg.GetInfo()
	if info != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Duration: %d ns, timecode scale: %d\n", info.Duration, info.TimecodeScale)
	}

	tracks := seg.GetTracks()
	if tracks == nil {
		return fmt.Errorf("file has no Tracks element")
	}

	extractors := make(map[uint64]*trackExtractor, len(tracks.All()))
	for _, t := range tracks.All() {
		ex, err := newTrackExtractor(t, outputDir, r)
		if err != nil {
			return err
		}
		extractors[t.Info().Number] = ex
	}
	defer func() {
		for _, ex := range extractors {
			_ = ex.close()
		}
	}()

	scale := uint64(1000000)
	if info != nil && info.TimecodeScale != 0 {
		scale = info.TimecodeScale
	}

	packetCount := 0
	for _, t := range tracks.All() {
		ex, ok := extractors[t.Info().Number]
		if !ok {
			continue
		}

		be, err := t.GetFirst()
		if err != nil {
			return fmt.Errorf("track %d: %w", t.Info().Number, err)
		}
		for be != nil {
			tc, err := be.Cluster().Timecode()
			if err != nil {
				return err
			}
			if err := ex.writeEntry(be, tc, scale); err != nil {
				return fmt.Errorf("track %d: %w", t.Info().Number, err)
			}
			packetCount++

			be, err = t.GetNext(be)
			if err != nil {
				return fmt.Errorf("track %d: %w", t.Info().Number, err)
			}
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d packets across %d track(s) to %s\n", packetCount, len(extractors), outputDir)
	return nil
}

// subtitleTrackType and videoTrackType mirror the Matroska TrackType enum
// values; this package only records the raw numeric TrackInfo.Type, so the
// CLI interprets it directly rather than adding a fourth TrackKind.
const (
	videoTrackType    = 1
	subtitleTrackType = 17
)

// trackExtractor writes one track's BlockEntries out as an elementary
// stream: raw bytes for audio/other, Annex B NAL units for AVC video, and
// SRT entries for subtitles.
type trackExtractor struct {
	info matroska.TrackInfo
	file *os.File
	r    matroska.Reader

	codecPrivateWritten bool
	subtitleIndex       int
}

func newTrackExtractor(t *matroska.Track, dir string, r matroska.Reader) (*trackExtractor, error) {
	info := t.Info()
	path := filepath.Join(dir, fmt.Sprintf("track_%d", info.Number))

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output for track %d: %w", info.Number, err)
	}
	if info.Type == subtitleTrackType {
		if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			_ = file.Close()
			return nil, err
		}
	}
	return &trackExtractor{info: info, file: file, r: r}, nil
}

func (ex *trackExtractor) close() error { return ex.file.Close() }

func (ex *trackExtractor) writeEntry(be *matroska.BlockEntry, clusterTimecode int64, scale uint64) error {
	blk := be.Block()
	switch ex.info.Type {
	case subtitleTrackType:
		return ex.writeSubtitle(be, blk, clusterTimecode, scale)
	case videoTrackType:
		if ex.info.CodecID == "V_MPEG4/ISO/AVC" {
			return ex.writeVideo(blk)
		}
		return ex.writeRaw(blk)
	default:
		return ex.writeRaw(blk)
	}
}

func (ex *trackExtractor) writeRaw(blk *matroska.Block) error {
	for i := 0; i < blk.FrameCount(); i++ {
		data, err := blk.Frame(i).Read(ex.r)
		if err != nil {
			return err
		}
		if _, err := ex.file.Write(data); err != nil {
			return err
		}
	}
	return nil
}

func (ex *trackExtractor) writeVideo(blk *matroska.Block) error {
	if !ex.codecPrivateWritten && len(ex.info.CodecPrivate) > 0 {
		if _, err := ex.file.Write(convertAVCCConfigToAnnexB(ex.info.CodecPrivate)); err != nil {
			return err
		}
		ex.codecPrivateWritten = true
	}
	for i := 0; i < blk.FrameCount(); i++ {
		data, err := blk.Frame(i).Read(ex.r)
		if err != nil {
			return err
		}
		if _, err := ex.file.Write(convertAVCCToAnnexB(data)); err != nil {
			return err
		}
	}
	return nil
}

func (ex *trackExtractor) writeSubtitle(be *matroska.BlockEntry, blk *matroska.Block, clusterTimecode int64, scale uint64) error {
	startNs := blk.Time(clusterTimecode, scale)
	endNs := startNs
	if dur, ok := be.Duration(); ok {
		endNs = startNs + dur*int64(scale)
	}

	for i := 0; i < blk.FrameCount(); i++ {
		data, err := blk.Frame(i).Read(ex.r)
		if err != nil {
			return err
		}
		ex.subtitleIndex++
		entry := formatSRTEntry(ex.subtitleIndex, uint64(startNs/1e6), uint64(endNs/1e6), data)
		if _, err := ex.file.WriteString(entry); err != nil {
			return err
		}
	}
	return nil
}

func formatSRTEntry(index int, startMs, endMs uint64, data []byte) string {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	if text == "" {
		text = " "
	}
	return fmt.Sprintf("%d\n%s --> %s\n%s\n\n", index, formatSRTTime(startMs), formatSRTTime(endMs), text)
}

func formatSRTTime(ms uint64) string {
	hours := ms / 3600000
	ms %= 3600000
	minutes := ms / 60000
	ms %= 60000
	seconds := ms / 1000
	milliseconds := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, milliseconds)
}

// convertAVCCToAnnexB rewrites an AVCC-framed sample (4-byte big-endian NAL
// lengths) into Annex B (start-code-delimited NAL units); Matroska stores
// H.264/H.265 samples in AVCC framing.
func convertAVCCToAnnexB(data []byte) []byte {
	var result []byte
	pos := 0

	for pos+4 <= len(data) {
		length := int(uint32(data[pos])<<24 | uint32(data[pos+1])<<16 | uint32(data[pos+2])<<8 | uint32(data[pos+3]))
		pos += 4

		if pos+length > len(data) {
			result = append(result, 0x00, 0x00, 0x01)
			result = append(result, data[pos:]...)
			break
		}

		result = append(result, 0x00, 0x00, 0x00, 0x01)
		result = append(result, data[pos:pos+length]...)
		pos += length
	}

	return result
}

// convertAVCCConfigToAnnexB rewrites an AVCDecoderConfigurationRecord's SPS
// and PPS entries into Annex-B-delimited NAL units, for emitting once at
// the start of a track's elementary stream.
func convertAVCCConfigToAnnexB(config []byte) []byte {
	var result []byte
	if len(config) < 6 {
		return result
	}

	pos := 5
	numSPS := int(config[pos] & 0x1F)
	pos++
	for i := 0; i < numSPS && pos+1 < len(config); i++ {
		spsLen := int(uint16(config[pos])<<8 | uint16(config[pos+1]))
		pos += 2
		if pos+spsLen > len(config) {
			break
		}
		result = append(result, 0x00, 0x00, 0x00, 0x01)
		result = append(result, config[pos:pos+spsLen]...)
		pos += spsLen
	}

	if pos >= len(config) {
		return result
	}
	numPPS := int(config[pos])
	pos++
	for i := 0; i < numPPS && pos+1 < len(config); i++ {
		ppsLen := int(uint16(config[pos])<<8 | uint16(config[pos+1]))
		pos += 2
		if pos+ppsLen > len(config) {
			break
		}
		result = append(result, 0x00, 0x00, 0x00, 0x01)
		result = append(result, config[pos:pos+ppsLen]...)
		pos += ppsLen
	}

	return result
}
