package lmstat

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `lmstat - Copyright (c) 1989-2013 Flexera Software LLC. All Rights Reserved.
Flexible License Manager status on Mon 2/2/2015 12:00

[Detecting lmgrd processes...]
License server status: 27000@licsrv
    License file(s) on licsrv: /usr/local/MATLAB/etc/license.dat:

   licsrv: license server UP (MASTER) v11.12

Vendor daemon status (on licsrv):

       MLM: UP v11.12
Feature usage info:

Users of MATLAB:  (Total of 10 licenses issued;  Total of 2 licenses in use)

  "MATLAB" v36, vendor: MLM
  floating license

    jdoe host1 host1 (v36) (licsrv/27000 1204), start Fri 1/30 8:44
    al host2 host2 (v36) (licsrv/27000 1305), start Mon 2/2 9:00

Users of SIMULINK:  (Total of 5 licenses issued;  Total of 0 licenses in use)

Users of Signal_Toolbox:  (Total of 3 licenses issued;  Total of 1 license in use)

  "Signal_Toolbox" v36, vendor: MLM
  floating license

    bob host3 host3 (v36) (licsrv/27000 1400), start Mon 2/2 11:30

`

const sampleAlphabetical = `
MATLAB Users (2 used out of 10 issued floating licenses):
  al : start Mon Feb 02 09:00:00 UTC 2015 (3.0 hours)
jdoe : start Fri Jan 30 08:44:00 UTC 2015 (75.3 hours)

SIMULINK Users (0 used out of 5 issued):

Signal_Toolbox Users (1 used out of 3 issued floating license):
bob : start Mon Feb 02 11:30:00 UTC 2015 (0.5 hours)
`

func newTestReader(mode SortMode) *Reader {
	return NewReader(Options{
		Clock:  &TestClock{CurrentTime: captureTime},
		Sort:   mode,
		Logger: zerolog.Nop(),
	})
}

func scannerFor(s string) *bufio.Scanner {
	return bufio.NewScanner(strings.NewReader(s))
}

func TestReader_Alphabetical(t *testing.T) {
	var out bytes.Buffer
	reports, err := newTestReader(SortAlphabetical).Run(scannerFor(sampleReport), &out)
	require.NoError(t, err)

	assert.Equal(t, sampleAlphabetical, out.String())

	require.Len(t, reports, 3)
	assert.Equal(t, LicenseBlock{Toolbox: "MATLAB", Issued: 10, Used: 2, Type: "floating license"}, reports[0].License)
	assert.Equal(t, []string{"al", "jdoe"}, names(reports[0].Sessions))
	assert.Equal(t, LicenseBlock{Toolbox: "SIMULINK", Issued: 5, Used: 0}, reports[1].License)
	assert.Empty(t, reports[1].Sessions)
	assert.Equal(t, "Signal_Toolbox", reports[2].License.Toolbox)
	assert.Equal(t, []string{"bob"}, names(reports[2].Sessions))
}

func TestReader_ByElapsed(t *testing.T) {
	var out bytes.Buffer
	reports, err := newTestReader(SortByElapsed).Run(scannerFor(sampleReport), &out)
	require.NoError(t, err)

	assert.Equal(t, []string{"jdoe", "al"}, names(reports[0].Sessions))
	assert.Contains(t, out.String(), "jdoe : start Fri Jan 30 08:44:00 UTC 2015 (75.3 hours)\n  al : start Mon Feb 02 09:00:00 UTC 2015 (3.0 hours)\n")
}

func TestReader_ElapsedTiesKeepInputOrder(t *testing.T) {
	input := `Users of MATLAB:  (Total of 10 licenses issued;  Total of 3 licenses in use)

  "MATLAB" v36, vendor: MLM
  floating license

    carol host1 host1 (v36) (licsrv/27000 1), start Mon 2/2 9:00
    alice host2 host2 (v36) (licsrv/27000 2), start Mon 2/2 9:00
    bert host3 host3 (v36) (licsrv/27000 3), start Mon 2/2 9:00
`
	reports, err := newTestReader(SortByElapsed).Run(scannerFor(input), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, []string{"carol", "alice", "bert"}, names(reports[0].Sessions))
}

func TestReader_EmptyInput(t *testing.T) {
	var out bytes.Buffer
	reports, err := newTestReader(SortAlphabetical).Run(scannerFor(""), &out)

	assert.True(t, errors.Is(err, ErrNoInput))
	assert.Nil(t, reports)
	assert.Empty(t, out.String())
}

func TestReader_NoBlocks(t *testing.T) {
	_, err := newTestReader(SortAlphabetical).Run(scannerFor("lmstat: Cannot connect to license server\n\n"), &bytes.Buffer{})
	assert.True(t, errors.Is(err, ErrNoInput))
}

func TestReader_HeaderTokenCount(t *testing.T) {
	input := "Users of MATLAB: (Total of 10 licenses issued; Total of)\n"
	_, err := newTestReader(SortAlphabetical).Run(scannerFor(input), &bytes.Buffer{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLicenseInfoUnavailable))
}

func TestReader_MalformedUserAbortsRun(t *testing.T) {
	input := strings.Replace(sampleReport, "start Mon 2/2 11:30", "start Mon 2/x 11:30", 1)

	var out bytes.Buffer
	reports, err := newTestReader(SortAlphabetical).Run(scannerFor(input), &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedDate))

	var fieldErr *FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "day", fieldErr.Field)

	// Blocks completed before the failure are still returned.
	assert.Len(t, reports, 2)
}

func TestReader_TruncatedTypeLines(t *testing.T) {
	input := "Users of MATLAB:  (Total of 10 licenses issued;  Total of 2 licenses in use)\n\n"
	_, err := newTestReader(SortAlphabetical).Run(scannerFor(input), &bytes.Buffer{})
	assert.True(t, errors.Is(err, ErrTruncatedInput))
}

func TestReader_UnusedBlockAtEndOfInput(t *testing.T) {
	input := "Users of SIMULINK:  (Total of 5 licenses issued;  Total of 0 licenses in use)"

	var out bytes.Buffer
	reports, err := newTestReader(SortAlphabetical).Run(scannerFor(input), &out)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.Equal(t, "\nSIMULINK Users (0 used out of 5 issued):\n", out.String())
}

func TestReader_LineAfterUsersIsDiscarded(t *testing.T) {
	// The user list ends at the first line without "start". That line is
	// consumed, so a header directly after the users is never seen.
	input := `Users of MATLAB:  (Total of 10 licenses issued;  Total of 1 license in use)

  "MATLAB" v36, vendor: MLM
  floating license

    jdoe host1 host1 (v36) (licsrv/27000 1204), start Fri 1/30 8:44
Users of SIMULINK:  (Total of 5 licenses issued;  Total of 0 licenses in use)

Users of Curve_Fitting_Toolbox:  (Total of 2 licenses issued;  Total of 0 licenses in use)

`
	reports, err := newTestReader(SortAlphabetical).Run(scannerFor(input), &bytes.Buffer{})
	require.NoError(t, err)

	require.Len(t, reports, 2)
	assert.Equal(t, "MATLAB", reports[0].License.Toolbox)
	assert.Equal(t, "Curve_Fitting_Toolbox", reports[1].License.Toolbox)
}

func TestReader_HeaderStyle(t *testing.T) {
	style := color.New(color.Bold)
	style.EnableColor()

	r := NewReader(Options{
		Clock:       &TestClock{CurrentTime: captureTime},
		Logger:      zerolog.Nop(),
		HeaderStyle: style,
	})

	var out bytes.Buffer
	_, err := r.Run(scannerFor(sampleReport), &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), style.Sprint("MATLAB Users (2 used out of 10 issued floating licenses):"))
	assert.Contains(t, out.String(), "\x1b[1m")
}

type failingSource struct {
	lines []string
	err   error
}

func (f *failingSource) Scan() bool {
	if len(f.lines) == 0 {
		return false
	}
	f.lines = f.lines[1:]
	return true
}

func (f *failingSource) Text() string { return "noise" }
func (f *failingSource) Err() error   { return f.err }

func TestReader_ReadError(t *testing.T) {
	boom := errors.New("disk on fire")
	src := &failingSource{lines: []string{"a", "b"}, err: boom}

	_, err := newTestReader(SortAlphabetical).Run(src, &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
	assert.False(t, errors.Is(err, ErrNoInput))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestReader_WriteError(t *testing.T) {
	_, err := newTestReader(SortAlphabetical).Run(scannerFor(sampleReport), failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed pipe")
}

func TestNewReader_DefaultClock(t *testing.T) {
	r := NewReader(Options{})
	_, ok := r.clock.(RealClock)
	assert.True(t, ok)
}
