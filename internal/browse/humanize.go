package browse

import "fmt"

// HumanizeBytes renders a size in KB below 1 MiB and in MB above. Unknown or
// non-positive sizes render as an em dash.
func HumanizeBytes(size *int64) string {
	if size == nil || *size <= 0 {
		return "—"
	}
	kb := float64(*size) / 1024
	if kb < 1024 {
		return fmt.Sprintf("%.1f KB", kb)
	}
	return fmt.Sprintf("%.2f MB", kb/1024)
}
