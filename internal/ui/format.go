package ui

import (
	"fmt"
	"math"
	"time"
)

// FormatDuration formats d as a short human readable value ("1.25s", "2m 3.00s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d.Seconds() < 60.0 {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d.Minutes() < 60.0 {
		remainingSeconds := math.Mod(d.Seconds(), 60)
		return fmt.Sprintf("%dm %.2fs", int64(d.Minutes()), remainingSeconds)
	}
	remainingMinutes := math.Mod(d.Minutes(), 60)
	remainingSeconds := math.Mod(d.Seconds(), 60)
	return fmt.Sprintf("%dh %dm %.2fs", int64(d.Hours()), int64(remainingMinutes), remainingSeconds)
}

// FormatBytes formats n using binary units ("512 B", "1.5 KB", "2.0 MB").
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit && exp < 3; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

// FormatScore formats a similarity score with at most one decimal place.
func FormatScore(score float64) string {
	if score == math.Trunc(score) {
		return fmt.Sprintf("%.0f", score)
	}
	return fmt.Sprintf("%.1f", score)
}
