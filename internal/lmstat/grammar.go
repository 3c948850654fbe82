package lmstat

import (
	"fmt"
	"strings"
)

// Field names shared by the grammars and FieldError.
const (
	fieldToolbox  = "toolbox"
	fieldIssued   = "issued"
	fieldUsed     = "used"
	fieldUsername = "username"
	fieldDate     = "date"
	fieldTime     = "time"

	fieldMonth  = "month"
	fieldDay    = "day"
	fieldHour   = "hour"
	fieldMinute = "minute"
)

// tokenRule binds a field name to a 0-based whitespace token position.
type tokenRule struct {
	Field    string
	Position int
}

// lineGrammar describes a positional record layout. When Exact is true the
// line must have exactly Tokens tokens, otherwise at least Tokens.
type lineGrammar struct {
	Name   string
	Tokens int
	Exact  bool
	Rules  []tokenRule
}

// licenseHeaderGrammar matches
//
//	Users of SIMULINK:  (Total of 5 licenses issued;  Total of 2 licenses in use)
//	0     1  2          3      4  5 6        7        8     9  10 11      12 13
var licenseHeaderGrammar = lineGrammar{
	Name:   "license header",
	Tokens: 14,
	Exact:  true,
	Rules: []tokenRule{
		{Field: fieldToolbox, Position: 2},
		{Field: fieldIssued, Position: 5},
		{Field: fieldUsed, Position: 10},
	},
}

// userSessionGrammar matches
//
//	jdoe host1 host1 (v36) (licsrv/27000 1204), start Fri 1/30 8:44
//	0    1     2     3     4             5      6     7   8    9
//
// Anything after token 9 (for example a linger annotation) is ignored.
var userSessionGrammar = lineGrammar{
	Name:   "user session",
	Tokens: 10,
	Rules: []tokenRule{
		{Field: fieldUsername, Position: 0},
		{Field: fieldDate, Position: 8},
		{Field: fieldTime, Position: 9},
	},
}

// tokenCountError is returned by extract when a line does not have the token
// count the grammar requires.
type tokenCountError struct {
	Grammar string
	Want    int
	Exact   bool
	Got     int
}

func (e *tokenCountError) Error() string {
	if e.Exact {
		return fmt.Sprintf("%s line has %d tokens, want %d", e.Grammar, e.Got, e.Want)
	}
	return fmt.Sprintf("%s line has %d tokens, want at least %d", e.Grammar, e.Got, e.Want)
}

// extract tokenizes line on whitespace and returns the fields named by the
// grammar's rules.
func (g lineGrammar) extract(line string) (map[string]string, error) {
	tokens := strings.Fields(line)

	if g.Exact && len(tokens) != g.Tokens || len(tokens) < g.Tokens {
		return nil, &tokenCountError{
			Grammar: g.Name,
			Want:    g.Tokens,
			Exact:   g.Exact,
			Got:     len(tokens),
		}
	}

	fields := make(map[string]string, len(g.Rules))
	for _, rule := range g.Rules {
		fields[rule.Field] = tokens[rule.Position]
	}
	return fields, nil
}
