package lmstat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineGrammar_ExtractLicenseHeader(t *testing.T) {
	fields, err := licenseHeaderGrammar.extract("Users of SIMULINK:  (Total of 5 licenses issued;  Total of 2 licenses in use)")
	require.NoError(t, err)

	assert.Equal(t, "SIMULINK:", fields[fieldToolbox])
	assert.Equal(t, "5", fields[fieldIssued])
	assert.Equal(t, "2", fields[fieldUsed])
}

func TestLineGrammar_ExactCount(t *testing.T) {
	tests := []struct {
		name string
		line string
		got  int
	}{
		{"too few", "Users of MATLAB: (Total of 10 licenses issued; Total of)", 10},
		{"too many", "Users of MATLAB: (Total of 10 licenses issued; Total of 2 licenses in use) extra", 15},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := licenseHeaderGrammar.extract(tt.line)
			require.Error(t, err)

			var countErr *tokenCountError
			require.True(t, errors.As(err, &countErr))
			assert.Equal(t, tt.got, countErr.Got)
			assert.Equal(t, 14, countErr.Want)
			assert.Contains(t, err.Error(), "license header")
		})
	}
}

func TestLineGrammar_MinimumCount(t *testing.T) {
	line := "jdoe host1 host1 (v36) (licsrv/27000 1204), start Fri 1/30 8:44 (linger: 1800)"
	fields, err := userSessionGrammar.extract(line)
	require.NoError(t, err)

	assert.Equal(t, "jdoe", fields[fieldUsername])
	assert.Equal(t, "1/30", fields[fieldDate])
	assert.Equal(t, "8:44", fields[fieldTime])

	_, err = userSessionGrammar.extract("jdoe host1 host1 start Fri 1/30 8:44")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want at least 10")
}
