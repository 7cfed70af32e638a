package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "coverscope/pkg/domain-errors"
)

// TestParseCoverageCode_Invariants validates the boundary invariant:
// canonical codes are non-empty, bounded, and drawn from a safe
// character set. Free text never passes as a code.
func TestParseCoverageCode_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseCoverageCode("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects whitespace only", func(t *testing.T) {
		_, err := ParseCoverageCode("   ")
		require.Error(t, err)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		code, err := ParseCoverageCode("  A4200_1  ")
		require.NoError(t, err)
		assert.Equal(t, CoverageCode("A4200_1"), code)
	})

	t.Run("accepts underscores and hyphens", func(t *testing.T) {
		_, err := ParseCoverageCode("A4200_1-B")
		require.NoError(t, err)
	})

	t.Run("rejects oversized input", func(t *testing.T) {
		_, err := ParseCoverageCode(strings.Repeat("A", 65))
		require.Error(t, err)
	})
}

// TestParseCoverageCode_SecurityInvariants validates that attack
// vectors are rejected at the trust boundary.
func TestParseCoverageCode_SecurityInvariants(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"SQL injection attempt", "'; DROP TABLE coverages;--", true},
		{"Path traversal", "../../../etc/passwd", true},
		{"Null byte injection", "A4200\x00_1", true},
		{"Korean free text", "암진단비", true},
		{"Embedded space", "A4200 1", true},
		{"Valid code", "A4200_1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCoverageCode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestParseInsurer_ClosedSet: the insurer vocabulary is closed; unknown
// codes never construct a value.
func TestParseInsurer_ClosedSet(t *testing.T) {
	t.Run("accepts every listed insurer", func(t *testing.T) {
		for _, ins := range Insurers {
			parsed, err := ParseInsurer(ins.String())
			require.NoError(t, err)
			assert.Equal(t, ins, parsed)
		}
	})

	t.Run("folds case and whitespace", func(t *testing.T) {
		parsed, err := ParseInsurer("  samsung ")
		require.NoError(t, err)
		assert.Equal(t, InsurerSamsung, parsed)
	})

	t.Run("rejects unknown carrier", func(t *testing.T) {
		_, err := ParseInsurer("ACME")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseInsurer("")
		require.Error(t, err)
	})
}

// TestDocType_Authority: only the two filed document types may
// determine values; summary material is permanently reference-only.
func TestDocType_Authority(t *testing.T) {
	assert.True(t, DocTypePolicyWording.Authoritative())
	assert.True(t, DocTypeBusinessMethod.Authoritative())
	assert.False(t, DocTypeProductSummary.Authoritative())

	// Primary outranks secondary; reference-only sorts last.
	assert.Less(t, DocTypePolicyWording.Priority(), DocTypeBusinessMethod.Priority())
	assert.Less(t, DocTypeBusinessMethod.Priority(), DocTypeProductSummary.Priority())
}

func TestParseDocType(t *testing.T) {
	for _, dt := range []DocType{DocTypePolicyWording, DocTypeBusinessMethod, DocTypeProductSummary} {
		parsed, err := ParseDocType(string(dt))
		require.NoError(t, err)
		assert.Equal(t, dt, parsed)
	}

	_, err := ParseDocType("marketing_flyer")
	require.Error(t, err)
}

// TestNewEvidenceID: generated IDs are unique and carry the EVID
// prefix the stores and audit records expect.
func TestNewEvidenceID(t *testing.T) {
	a := NewEvidenceID()
	b := NewEvidenceID()

	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a.String(), "EVID-"))
}
