package lmstat

import (
	"fmt"
	"strconv"
	"strings"
)

// LicenseBlock is the seat summary of one toolbox.
type LicenseBlock struct {
	Toolbox string
	Issued  int
	Used    int
	// Type is the license classifier (for example "floating license"). It is
	// only filled in when the block has seats in use.
	Type string
}

// ParseLicenseBlock decodes a "Users of <toolbox>: (Total of N licenses
// issued; Total of M licenses in use)" header line.
func ParseLicenseBlock(line string) (LicenseBlock, error) {
	fields, err := licenseHeaderGrammar.extract(line)
	if err != nil {
		return LicenseBlock{}, fmt.Errorf("%w: %v", ErrLicenseInfoUnavailable, err)
	}

	toolbox, _, _ := strings.Cut(fields[fieldToolbox], ":")

	issued, err := parseCount(fieldIssued, fields[fieldIssued])
	if err != nil {
		return LicenseBlock{}, err
	}

	used, err := parseCount(fieldUsed, fields[fieldUsed])
	if err != nil {
		return LicenseBlock{}, err
	}

	return LicenseBlock{
		Toolbox: toolbox,
		Issued:  issued,
		Used:    used,
	}, nil
}

func parseCount(field, token string) (int, error) {
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return 0, &FieldError{Field: field, Value: token, Err: ErrMalformedLicenseRecord}
	}
	return n, nil
}

// Summary renders the seat counts, e.g. "2 used out of 5 issued floating licenses".
func (b LicenseBlock) Summary() string {
	if b.Type == "" {
		return fmt.Sprintf("%d used out of %d issued", b.Used, b.Issued)
	}
	return fmt.Sprintf("%d used out of %d issued %s%s", b.Used, b.Issued, b.Type, b.plural())
}

func (b LicenseBlock) plural() string {
	if b.Used > 1 {
		return "s"
	}
	return ""
}
