package transcript

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Segment is one timed unit of recognized speech.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Cue is one parsed SRT block. Timing is kept verbatim so re-rendered cues
// match the source byte for byte.
type Cue struct {
	Index  int
	Timing string
	Lines  []string
}

// FormatTimestamp renders ms as HH:MM:SS,mmm. Negative input clamps to zero.
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3_600_000
	ms %= 3_600_000
	minutes := ms / 60_000
	ms %= 60_000
	seconds := ms / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, ms)
}

// TimingLine renders the "start --> end" line for a segment.
func TimingLine(seg Segment) string {
	return FormatTimestamp(seg.Start.Milliseconds()) + " --> " + FormatTimestamp(seg.End.Milliseconds())
}

// RenderSRT serializes segments as numbered cues starting at 1. Segments
// with blank text are skipped and do not consume an index.
func RenderSRT(segments []Segment) string {
	var b strings.Builder
	index := 0
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		index++
		b.WriteString(strconv.Itoa(index))
		b.WriteByte('\n')
		b.WriteString(TimingLine(seg))
		b.WriteByte('\n')
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderCues writes cues renumbered from start and returns the next index.
func RenderCues(b *strings.Builder, cues []Cue, start int) int {
	index := start
	for _, cue := range cues {
		b.WriteString(strconv.Itoa(index))
		b.WriteByte('\n')
		b.WriteString(cue.Timing)
		b.WriteByte('\n')
		for _, line := range cue.Lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
		index++
	}
	return index
}

// ParseSRT splits SRT content into cues. Blocks are separated by blank
// lines; a block is a cue when it has a timing line containing "-->". The
// leading index line is optional. Blocks without timing are dropped.
func ParseSRT(content string) []Cue {
	content = strings.TrimPrefix(content, "\ufeff")
	content = strings.ReplaceAll(content, "\r\n", "\n")

	var (
		cues  []Cue
		block []string
	)
	flush := func() {
		if cue, ok := parseBlock(block); ok {
			cues = append(cues, cue)
		}
		block = block[:0]
	}
	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		block = append(block, line)
	}
	flush()
	return cues
}

func parseBlock(lines []string) (Cue, bool) {
	if len(lines) == 0 {
		return Cue{}, false
	}
	cue := Cue{}
	i := 0
	if n, err := strconv.Atoi(strings.TrimSpace(lines[0])); err == nil {
		cue.Index = n
		i = 1
	}
	if i >= len(lines) || !strings.Contains(lines[i], "-->") {
		return Cue{}, false
	}
	cue.Timing = strings.TrimSpace(lines[i])
	cue.Lines = append([]string(nil), lines[i+1:]...)
	return cue, true
}
