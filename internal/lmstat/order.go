package lmstat

import (
	"fmt"
	"sort"
	"strings"
)

// SortMode selects the order of users within a block.
type SortMode int

const (
	// SortAlphabetical orders users by ascending username.
	SortAlphabetical SortMode = iota
	// SortByElapsed orders users by descending elapsed hours.
	SortByElapsed
)

func (m SortMode) String() string {
	switch m {
	case SortAlphabetical:
		return "alpha"
	case SortByElapsed:
		return "time"
	default:
		return fmt.Sprintf("SortMode(%d)", int(m))
	}
}

// ParseSortMode accepts the names used in configuration files.
func ParseSortMode(s string) (SortMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "alpha", "alphabetical", "name":
		return SortAlphabetical, nil
	case "time", "elapsed":
		return SortByElapsed, nil
	default:
		return 0, fmt.Errorf("unknown sort mode %q (want alpha or time)", s)
	}
}

// SortSessions orders sessions in place. Both orders are stable, so users with
// equal elapsed time keep their report order.
func SortSessions(sessions []UserSession, mode SortMode) {
	switch mode {
	case SortByElapsed:
		sort.SliceStable(sessions, func(i, j int) bool {
			return sessions[i].ElapsedHours > sessions[j].ElapsedHours
		})
	default:
		sort.SliceStable(sessions, func(i, j int) bool {
			return sessions[i].Username < sessions[j].Username
		})
	}
}
