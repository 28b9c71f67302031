package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var mentionStripper = strings.NewReplacer("<", "", "@", "", "!", "", "&", "", ">", "")

// ParseID strips mention syntax (<@id>, <@!id>, <@&id>) and returns the bare ID.
func ParseID(ref string) string {
	return mentionStripper.Replace(strings.TrimSpace(ref))
}

// IsSnowflake reports whether id is a plausible numeric platform ID.
func IsSnowflake(id string) bool {
	if id == "" {
		return false
	}
	_, err := StringToUint64(id)
	return err == nil
}

func StringToUint64(s string) (uint64, error) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse uint64: %w", err)
	}
	return n, nil
}

func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func FormatDuration(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// ProgressBar renders a ten-cell bar for a 0-100 percentage.
func ProgressBar(percent float64) string {
	filled := int(percent / 10)
	if filled < 0 {
		filled = 0
	}
	if filled > 10 {
		filled = 10
	}
	return "`" + strings.Repeat("█", filled) + strings.Repeat("░", 10-filled) + "`"
}
