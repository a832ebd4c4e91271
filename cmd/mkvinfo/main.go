package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luispater/mkvdemux"
)

var rootCmd = &cobra.Command{
	Use:           "mkvinfo <file>",
	Short:         "Inspect the headers, tracks and cues of a Matroska/WebM file.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(infoCmd, tracksCmd, cuesCmd, versionCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print mkvinfo version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		major, minor, build, revision := matroska.Version()
		fmt.Fprintf(cmd.OutOrStdout(), "mkvinfo %d.%d.%d.%d\n", major, minor, build, revision)
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <file>",
	Short: "Print the segment's Info element",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seg, closeFn, err := openSegment(args[0])
		if err != nil {
			return err
		}
		defer closeFn()

		info := seg.GetInfo()
		if info == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "(no Info element present)")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Timecode scale: %d\n", info.TimecodeScale)
		fmt.Fprintf(out, "Duration:       %d ns\n", info.Duration)
		fmt.Fprintf(out, "Title:          %q\n", info.Title)
		fmt.Fprintf(out, "Muxing app:     %q\n", info.MuxingApp)
		fmt.Fprintf(out, "Writing app:    %q\n", info.WritingApp)
		return nil
	},
}

var tracksCmd = &cobra.Command{
	Use:   "tracks <file>",
	Short: "List the segment's tracks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seg, closeFn, err := openSegment(args[0])
		if err != nil {
			return err
		}
		defer closeFn()

		tracks := seg.GetTracks()
		if tracks == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "(no Tracks element present)")
			return nil
		}
		out := cmd.OutOrStdout()
		for _, t := range tracks.All() {
			info := t.Info()
			fmt.Fprintf(out, "Track %d: kind=%s codec=%s name=%q lacing=%v\n",
				info.Number, kindString(t.Kind()), info.CodecID, info.NameUTF8, info.Lacing)
			switch t.Kind() {
			case matroska.TrackVideo:
				v := t.Video()
				fmt.Fprintf(out, "  video: %dx%d\n", v.Width, v.Height)
			case matroska.TrackAudio:
				a := t.Audio()
				fmt.Fprintf(out, "  audio: %.0fHz %d channel(s) %d-bit\n", a.SamplingRate, a.Channels, a.BitDepth)
			}
			if len(t.ContentEncodings()) > 0 {
				fmt.Fprintf(out, "  content encodings: %d\n", len(t.ContentEncodings()))
			}
		}
		return nil
	},
}

var cuesCmd = &cobra.Command{
	Use:   "cues <file>",
	Short: "List the segment's cue points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		seg, closeFn, err := openSegment(args[0])
		if err != nil {
			return err
		}
		defer closeFn()

		cues := seg.GetCues()
		if cues == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "(no Cues element present)")
			return nil
		}
		scale := uint64(1000000)
		if info := seg.GetInfo(); info != nil && info.TimecodeScale != 0 {
			scale = info.TimecodeScale
		}

		if err := cues.Preload(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for cp := cues.GetFirst(); cp != nil; cp = cues.GetNext(cp) {
			fmt.Fprintf(out, "Cue at %d ns\n", cp.Time(scale))
		}
		return nil
	},
}

func kindString(k matroska.TrackKind) string {
	switch k {
	case matroska.TrackVideo:
		return "video"
	case matroska.TrackAudio:
		return "audio"
	default:
		return "other"
	}
}

// openSegment opens path as an os.File-backed matroska.Reader and parses
// its headers with a single ParseHeaders call. The whole file is available
// up front, so no NeedMore retries are made — this CLI has no use for
// incremental delivery, only for the Reader abstraction itself.
func openSegment(path string) (*matroska.Segment, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = f.Close() }

	r, err := newFileReader(f)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	seg, err := matroska.Open(r, 0)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	if err := seg.ParseHeaders(); err != nil {
		closeFn()
		return nil, nil, err
	}
	return seg, closeFn, nil
}
