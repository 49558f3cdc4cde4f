// Package stats contains scoring calculations and result reports.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/compquiz/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Accuracy returns score/total in [0,1], 0 when nothing was answered.
func Accuracy(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) / float64(total)
}

// FormatAccuracy renders accuracy as a percentage with one decimal, or "0%"
// when nothing was answered.
func FormatAccuracy(score, total int) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", Accuracy(score, total)*100)
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

// FormatDuration renders seconds as "Xm Ys".
func FormatDuration(seconds int) string {
	return fmt.Sprintf("%dm %ds", seconds/60, seconds%60)
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := lo.Min(values)
	maxVal := lo.Max(values)
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderLevelTable prints the per-level breakdown of a run.
func RenderLevelTable(w io.Writer, summaries []model.LevelSummary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, "No answers submitted.")
		return err
	}
	cols := []column{
		{title: "Level"},
		{title: "Correct", right: true},
		{title: "Answered", right: true},
		{title: "Accuracy", right: true},
	}
	rows := lo.Map(summaries, func(ls model.LevelSummary, _ int) []string {
		return []string{
			fmt.Sprintf("%d", ls.Level),
			fmt.Sprintf("%d", ls.Correct),
			fmt.Sprintf("%d", ls.Total),
			FormatAccuracy(ls.Correct, ls.Total),
		}
	})
	return writeTable(w, cols, rows)
}

// RenderAnswerTimes prints a sparkline of answer times with the average.
func RenderAnswerTimes(w io.Writer, elapsed []time.Duration) error {
	if len(elapsed) == 0 {
		return nil
	}
	seconds := lo.Map(elapsed, func(d time.Duration, _ int) float64 {
		return d.Seconds()
	})
	avg := lo.Sum(seconds) / float64(len(seconds))
	_, err := fmt.Fprintf(w, "Answer times  %s  avg %.1fs\n", Sparkline(seconds), avg)
	return err
}
