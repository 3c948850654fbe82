package lmstat

import (
	"fmt"
	"unicode/utf8"
)

// TimestampLayout renders session start times with weekday, month, zone and year.
const TimestampLayout = "Mon Jan 02 15:04:05 MST 2006"

// FormatUserSession renders a user line with the username right-justified to
// width. Longer names are printed in full.
func FormatUserSession(u UserSession, width int) string {
	return fmt.Sprintf("%*s : start %s (%.1f hours)",
		width, u.Username, u.Start.Format(TimestampLayout), u.ElapsedHours)
}

// FormatLicenseBlock renders the header line of a toolbox block.
func FormatLicenseBlock(b LicenseBlock) string {
	return fmt.Sprintf("%s Users (%s):", b.Toolbox, b.Summary())
}

// UsernameWidth returns the length in characters of the longest username,
// matching how %*s pads.
func UsernameWidth(sessions []UserSession) int {
	width := 0
	for _, s := range sessions {
		if n := utf8.RuneCountInString(s.Username); n > width {
			width = n
		}
	}
	return width
}
