package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/five82/flvgap"
	"github.com/five82/flvgap/internal/flv"
	"github.com/five82/flvgap/internal/util"
)

func newInfoCmd() *cobra.Command {
	var showMeta, allTags bool

	cmd := &cobra.Command{
		Use:   "info [flags] FILE",
		Short: "Show the structure of an FLV file",
		Long: `Show the header, stream statistics and tag listing of an FLV file.

By default only key frames and sequence headers are listed; --all lists
every tag.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeInfo(cmd.OutOrStdout(), args[0], showMeta, allTags)
		},
	}

	cmd.Flags().BoolVarP(&showMeta, "meta", "m", false, "Show onMetaData properties and the keyframe index")
	cmd.Flags().BoolVarP(&allTags, "all", "a", false, "List every tag")
	return cmd
}

func executeInfo(w io.Writer, path string, showMeta, allTags bool) error {
	heading := color.New(color.FgCyan, color.Bold)

	_, _ = heading.Fprintln(w, "TAGS")
	_, _ = fmt.Fprintf(w, "  %6s  %-13s  %-6s  %8s  %10s  %s\n", "#", "time", "type", "size", "offset", "detail")

	listed := 0
	sum, err := flvgap.Info(path, func(tag flvgap.Tag) {
		if !allTags && !tag.Keyframe() && !tag.Sequence {
			return
		}
		listed++
		_, _ = fmt.Fprintf(w, "  %6d  %-13s  %-6s  %8d  %10d  %s\n",
			tag.ID, util.FormatTimestamp(tag.Timestamp), tag.Type, tag.DataSize, tag.Offset, tagDetail(tag))
	})
	if err != nil {
		return &exitCodeError{code: exitError, err: err}
	}
	if listed == 0 {
		_, _ = fmt.Fprintln(w, "  (none)")
	}

	_, _ = fmt.Fprintln(w)
	_, _ = heading.Fprintln(w, "FILE")
	_, _ = fmt.Fprintf(w, "  Path:     %s\n", sum.Path)
	_, _ = fmt.Fprintf(w, "  Size:     %s (%d bytes)\n", util.FormatBytes(uint64(sum.Size)), sum.Size)
	_, _ = fmt.Fprintf(w, "  Version:  %d\n", sum.Header.Version)
	_, _ = fmt.Fprintf(w, "  Flags:    audio=%t video=%t\n", sum.Header.HasAudio, sum.Header.HasVideo)
	_, _ = fmt.Fprintf(w, "  Tags:     %d\n", sum.TotalTags())
	if sum.BadBackPointers > 0 {
		_, _ = fmt.Fprintf(w, "  Warning:  %d tags with a mismatched PreviousTagSize\n", sum.BadBackPointers)
	}

	_, _ = fmt.Fprintln(w)
	_, _ = heading.Fprintln(w, "STREAMS")
	printStream(w, "video", sum.Video)
	printStream(w, "audio", sum.Audio)
	printStream(w, "script", sum.Script)

	if showMeta {
		_, _ = fmt.Fprintln(w)
		_, _ = heading.Fprintln(w, "METADATA")
		printMetadata(w, sum)
	}

	if sum.Err != nil {
		return &exitCodeError{code: exitError, err: sum.Err}
	}
	return nil
}

func tagDetail(tag flv.Tag) string {
	switch tag.Type {
	case flv.TagVideo:
		kind := "frame"
		switch {
		case tag.Sequence:
			kind = "sequence"
		case tag.Keyframe():
			kind = "keyframe"
		}
		return fmt.Sprintf("%s codec=%d frame_type=%d packet=%d", kind, tag.CodecID, tag.FrameType, tag.PacketType)
	case flv.TagAudio:
		kind := "frame"
		if tag.Sequence {
			kind = "sequence"
		}
		return fmt.Sprintf("%s format=%d rate=%d packet=%d", kind, tag.SoundFormat, tag.SoundRate, tag.PacketType)
	default:
		return ""
	}
}

func printStream(w io.Writer, name string, st flv.StreamStats) {
	if st.Tags == 0 {
		_, _ = fmt.Fprintf(w, "  %-7s none\n", name+":")
		return
	}
	_, _ = fmt.Fprintf(w, "  %-7s %d tags (%d sequence, %d keyframes), %s, %s -> %s\n",
		name+":", st.Tags, st.SequenceTags, st.Keyframes, util.FormatBytes(st.Bytes),
		util.FormatTimestamp(st.FirstTimestamp), util.FormatTimestamp(st.LastTimestamp))
}

func printMetadata(w io.Writer, sum *flvgap.Summary) {
	if sum.MetadataErr != nil {
		_, _ = fmt.Fprintf(w, "  unreadable: %v\n", sum.MetadataErr)
		return
	}
	md := sum.Metadata
	if md == nil {
		_, _ = fmt.Fprintln(w, "  (no script tag)")
		return
	}

	_, _ = fmt.Fprintf(w, "  Event: %s\n", md.Event)
	keys := make([]string, 0, len(md.Properties))
	for k := range md.Properties {
		if k == "keyframes" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := json.Marshal(md.Properties[k])
		if err != nil {
			v = []byte(fmt.Sprint(md.Properties[k]))
		}
		_, _ = fmt.Fprintf(w, "  %-18s %s\n", k+":", v)
	}

	if len(md.KeyframeTimes) == 0 {
		return
	}
	_, _ = fmt.Fprintln(w, "  Keyframe index:")
	for i, t := range md.KeyframeTimes {
		pos := "-"
		if i < len(md.KeyframePositions) {
			pos = fmt.Sprintf("%.0f", md.KeyframePositions[i])
		}
		_, _ = fmt.Fprintf(w, "  %4d  %s  %10s\n", i, util.FormatTimestamp(int64(t*1000)), pos)
	}
}
