package service

import (
	"context"
	"crypto/rand"
	"regexp"
	"strings"

	"github.com/patified/patified-backend/internal/domain"
)

// codeAlphabet has 32 symbols: A-Z and 2-9 minus the visually ambiguous
// O/I (and so also 0/1).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeLength      = 6
	maxCodeAttempts = 10
)

var codePattern = regexp.MustCompile(`^[A-Z0-9]{6}$`)

// NormalizeCode uppercases a join code and strips whitespace, the canonical
// form used for both generation and comparison.
func NormalizeCode(input string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(input)), " ", "")
}

// ValidCodeFormat reports whether the normalized code is 6 uppercase
// alphanumerics.
func ValidCodeFormat(code string) bool {
	return codePattern.MatchString(NormalizeCode(code))
}

// CodeChecker is the one repository primitive code generation needs.
type CodeChecker interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// CodeGenerator produces join codes that are unique among all lobbies,
// terminal ones included, since terminal lobbies stay queryable by code.
type CodeGenerator struct {
	checker CodeChecker
}

func NewCodeGenerator(checker CodeChecker) *CodeGenerator {
	return &CodeGenerator{checker: checker}
}

// Generate returns a fresh unused code, retrying on collision up to the
// attempt cap and failing with domain.ErrCodeExhausted past it.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := randomCode()
		exists, err := g.checker.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", domain.ErrCodeExhausted
}

func randomCode() string {
	buf := make([]byte, codeLength)
	rand.Read(buf)
	code := make([]byte, codeLength)
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(code)
}
