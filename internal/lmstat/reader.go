package lmstat

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
)

const (
	blockMarker   = "Users of "
	sessionMarker = "start"

	// licenseTypeLines is the number of lines following a header with seats in
	// use; the last of them names the license type.
	licenseTypeLines = 3
)

// LineSource yields the lines of an lmstat report. *bufio.Scanner satisfies it.
type LineSource interface {
	Scan() bool
	Text() string
	Err() error
}

// BlockReport is a rendered toolbox block with its users in output order.
type BlockReport struct {
	License  LicenseBlock
	Sessions []UserSession
}

// Options configures a Reader.
type Options struct {
	Clock  Clock
	Sort   SortMode
	Logger zerolog.Logger
	// HeaderStyle decorates block header lines. Nil prints them plain.
	HeaderStyle *color.Color
}

// Reader walks an lmstat report block by block and renders each block as soon
// as its user list is complete.
type Reader struct {
	clock       Clock
	sort        SortMode
	logger      zerolog.Logger
	headerStyle *color.Color
}

// NewReader creates a Reader. A nil Clock falls back to the system clock.
func NewReader(opts Options) *Reader {
	clock := opts.Clock
	if clock == nil {
		clock = RealClock{}
	}
	return &Reader{
		clock:       clock,
		sort:        opts.Sort,
		logger:      opts.Logger,
		headerStyle: opts.HeaderStyle,
	}
}

// Run consumes src and writes the summary to w. It returns the blocks it
// rendered. The first malformed record aborts the run; ErrNoInput is returned
// when src holds no "Users of " line at all.
func (r *Reader) Run(src LineSource, w io.Writer) ([]BlockReport, error) {
	c := &cursor{src: src}
	out := &lineWriter{w: w}
	var reports []BlockReport

	for {
		header, found := c.seek(blockMarker)
		if !found {
			break
		}

		license, err := ParseLicenseBlock(header)
		if err != nil {
			return reports, err
		}

		if license.Used != 0 {
			var typeLine string
			for i := 0; i < licenseTypeLines; i++ {
				line, ok := c.next()
				if !ok {
					if err := c.err(); err != nil {
						return reports, err
					}
					return reports, fmt.Errorf("%w: %s license type missing", ErrTruncatedInput, license.Toolbox)
				}
				typeLine = line
			}
			license.Type = strings.TrimSpace(typeLine)
		}

		// Blank separator before the user list.
		c.next()

		out.println("")
		out.println(r.styleHeader(FormatLicenseBlock(license)))

		var sessions []UserSession
		if license.Used > 0 {
			sessions, err = r.collectSessions(c)
			if err != nil {
				return reports, err
			}

			width := UsernameWidth(sessions)
			SortSessions(sessions, r.sort)
			for _, s := range sessions {
				out.println(FormatUserSession(s, width))
			}
		}

		if out.err != nil {
			return reports, fmt.Errorf("failed to write report: %w", out.err)
		}

		r.logger.Debug().
			Str("toolbox", license.Toolbox).
			Int("issued", license.Issued).
			Int("used", license.Used).
			Str("type", license.Type).
			Int("sessions", len(sessions)).
			Msg("License block rendered")

		reports = append(reports, BlockReport{License: license, Sessions: sessions})
	}

	if err := c.err(); err != nil {
		return reports, err
	}
	if len(reports) == 0 {
		return nil, ErrNoInput
	}
	return reports, nil
}

// collectSessions parses consecutive "start" lines. The first line without the
// marker ends the list and is not seen by the block search that follows.
func (r *Reader) collectSessions(c *cursor) ([]UserSession, error) {
	var sessions []UserSession
	for {
		line, ok := c.next()
		if !ok || !strings.Contains(line, sessionMarker) {
			return sessions, nil
		}

		session, err := ParseUserSession(line, r.clock.Now())
		if err != nil {
			r.logger.Debug().Err(err).Str("line", line).Msg("Rejected user line")
			return nil, err
		}
		sessions = append(sessions, session)
	}
}

func (r *Reader) styleHeader(s string) string {
	if r.headerStyle == nil {
		return s
	}
	return r.headerStyle.Sprint(s)
}

// cursor is the single forward position into a LineSource.
type cursor struct {
	src LineSource
}

func (c *cursor) next() (string, bool) {
	if !c.src.Scan() {
		return "", false
	}
	return c.src.Text(), true
}

// seek discards lines until one contains marker.
func (c *cursor) seek(marker string) (string, bool) {
	for {
		line, ok := c.next()
		if !ok {
			return "", false
		}
		if strings.Contains(line, marker) {
			return line, true
		}
	}
}

func (c *cursor) err() error {
	if err := c.src.Err(); err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	return nil
}

// lineWriter remembers the first write error so rendering code stays linear.
type lineWriter struct {
	w   io.Writer
	err error
}

func (lw *lineWriter) println(s string) {
	if lw.err != nil {
		return
	}
	_, lw.err = fmt.Fprintln(lw.w, s)
}
