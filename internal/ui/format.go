// ABOUTME: Formatting helpers for voice notes
// ABOUTME: m:ss durations and the bar waveform
package ui

import (
	"fmt"
	"math"
	"strings"
)

// WaveformBars is the number of bars drawn per voice note
const WaveformBars = 20

var barGlyphs = []rune("▁▂▃▄▅▆▇█")

// formatTime renders seconds as m:ss
func formatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(math.Floor(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

// waveform maps peaks to bar glyphs. Bars before progress use played,
// the rest use pending.
func waveform(peaks []float32, progress float64, played, pending func(...string) string) string {
	var max float32
	for _, p := range peaks {
		if p > max {
			max = p
		}
	}

	playedBars := int(math.Floor(progress * float64(len(peaks))))

	var sb strings.Builder
	for i, p := range peaks {
		level := 0
		if max > 0 {
			level = int(p / max * float32(len(barGlyphs)-1))
		}
		bar := string(barGlyphs[level])
		if i < playedBars {
			sb.WriteString(played(bar))
		} else {
			sb.WriteString(pending(bar))
		}
	}
	return sb.String()
}

func truncate(s string, length int) string {
	r := []rune(s)
	if len(r) <= length {
		return s
	}
	return string(r[:length-3]) + "..."
}
