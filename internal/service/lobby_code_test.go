package service

import (
	"context"
	"strings"
	"testing"

	"github.com/patified/patified-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCodeChecker struct {
	existing map[string]bool
	always   bool
	calls    int
}

func (s *stubCodeChecker) CodeExists(ctx context.Context, code string) (bool, error) {
	s.calls++
	if s.always {
		return true, nil
	}
	return s.existing[code], nil
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "abc123", "ABC123"},
		{"surrounding whitespace", "  ABC123  ", "ABC123"},
		{"inner spaces", "ABC 123", "ABC123"},
		{"already canonical", "XYZ789", "XYZ789"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCode(tt.input))
		})
	}
}

func TestValidCodeFormat(t *testing.T) {
	tests := []struct {
		name string
		code string
		want bool
	}{
		{"valid code", "ABC123", true},
		{"valid lowercase input", "abc123", true},
		{"too short", "ABC12", false},
		{"too long", "ABC1234", false},
		{"symbols", "ABC12!", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCodeFormat(tt.code))
		})
	}
}

func TestCodeGenerator_Generate(t *testing.T) {
	checker := &stubCodeChecker{}
	gen := NewCodeGenerator(checker)

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, codeLength)
	assert.True(t, ValidCodeFormat(code))

	for _, r := range code {
		assert.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected symbol %q", r)
	}
}

func TestCodeGenerator_Exhaustion(t *testing.T) {
	checker := &stubCodeChecker{always: true}
	gen := NewCodeGenerator(checker)

	_, err := gen.Generate(context.Background())
	assert.ErrorIs(t, err, domain.ErrCodeExhausted)
	assert.Equal(t, maxCodeAttempts, checker.calls)
}

func TestRandomCode_AlphabetOnly(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := randomCode()
		require.Len(t, code, codeLength)
		for _, r := range code {
			require.True(t, strings.ContainsRune(codeAlphabet, r), "unexpected symbol %q in %s", r, code)
		}
	}
}
