package taskstate

import "fmt"

// Progress returns done/total as a percentage. ok is false when total is
// not positive, in which case the progress is unknown and percent is 0.
func Progress(done, total int64) (percent float64, ok bool) {
	if total <= 0 {
		return 0, false
	}
	return float64(done) * 100 / float64(total), true
}

// FormatProgress renders Progress as "25.0%", or "unknown".
func FormatProgress(done, total int64) string {
	p, ok := Progress(done, total)
	if !ok {
		return "unknown"
	}
	return fmt.Sprintf("%.1f%%", p)
}
