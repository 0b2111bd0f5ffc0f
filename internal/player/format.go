package player

import (
	"fmt"
	"math"
)

// FormatTime renders seconds as M:SS, or H:MM:SS from one hour up.
// Non-finite or negative input renders as 0:00.
func FormatTime(seconds float64) string {
	if !finite(seconds) || seconds < 0 {
		return "0:00"
	}

	total := int64(math.Floor(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	sec := total % 60

	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%d:%02d", m, sec)
}
