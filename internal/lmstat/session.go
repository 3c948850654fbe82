package lmstat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UserSession is one user holding a seat of a toolbox.
type UserSession struct {
	Username string
	// Start carries month, day, hour and minute from the report. The report has
	// no year, so the year of the capture time is used; seconds are zero.
	Start time.Time
	// ElapsedHours is the capture time minus Start. It is negative when the
	// report and the local clock disagree.
	ElapsedHours float64
}

// ParseUserSession decodes a "start" line of an lmstat user list relative to
// the capture time now.
func ParseUserSession(line string, now time.Time) (UserSession, error) {
	fields, err := userSessionGrammar.extract(line)
	if err != nil {
		return UserSession{}, fmt.Errorf("%w: %v", ErrMalformedUserRecord, err)
	}

	month, day, err := parseMonthDay(fields[fieldDate], now.Year())
	if err != nil {
		return UserSession{}, err
	}

	hour, minute, err := parseHourMinute(fields[fieldTime])
	if err != nil {
		return UserSession{}, err
	}

	start := time.Date(now.Year(), month, day, hour, minute, 0, 0, now.Location())

	return UserSession{
		Username:     fields[fieldUsername],
		Start:        start,
		ElapsedHours: now.Sub(start).Hours(),
	}, nil
}

// parseMonthDay decodes an M/D token such as "1/30" or "01/30".
func parseMonthDay(token string, year int) (time.Month, int, error) {
	monthPart, dayPart, _ := strings.Cut(token, "/")

	month, err := parseBounded(monthPart, 1, 12)
	if err != nil {
		return 0, 0, &FieldError{Field: fieldMonth, Value: token, Err: fmt.Errorf("%w: %v", ErrMalformedDate, err)}
	}

	day, err := parseBounded(dayPart, 1, daysIn(time.Month(month), year))
	if err != nil {
		return 0, 0, &FieldError{Field: fieldDay, Value: token, Err: fmt.Errorf("%w: %v", ErrMalformedDate, err)}
	}

	return time.Month(month), day, nil
}

// parseHourMinute decodes an H:MM token such as "8:44".
func parseHourMinute(token string) (int, int, error) {
	hourPart, minutePart, _ := strings.Cut(token, ":")

	hour, err := parseBounded(hourPart, 0, 23)
	if err != nil {
		return 0, 0, &FieldError{Field: fieldHour, Value: token, Err: fmt.Errorf("%w: %v", ErrMalformedTime, err)}
	}

	minute, err := parseBounded(minutePart, 0, 59)
	if err != nil {
		return 0, 0, &FieldError{Field: fieldMinute, Value: token, Err: fmt.Errorf("%w: %v", ErrMalformedTime, err)}
	}

	return hour, minute, nil
}

func parseBounded(s string, lo, hi int) (int, error) {
	if s == "" {
		return 0, errors.New("missing value")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("%d out of range [%d, %d]", n, lo, hi)
	}
	return n, nil
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
