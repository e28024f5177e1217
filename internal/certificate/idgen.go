package certificate

import (
	"fmt"
	"strings"
	"time"
)

// idPrefix is the fixed organizational prefix of every certificate identifier.
const idPrefix = "DL"

// IDGenerator derives stable, human-readable certificate identifiers. The
// domain short-code enumeration is configuration-supplied.
type IDGenerator struct {
	shortCodes map[string]string
	codeSet    map[string]bool
}

// NewIDGenerator builds a generator from the domain name -> short code map.
func NewIDGenerator(shortCodes map[string]string) *IDGenerator {
	codeSet := make(map[string]bool, len(shortCodes))
	for _, code := range shortCodes {
		codeSet[code] = true
	}
	return &IDGenerator{shortCodes: shortCodes, codeSet: codeSet}
}

// ShortCode resolves a domain name to its short code.
func (g *IDGenerator) ShortCode(domain string) (string, error) {
	code, ok := g.shortCodes[domain]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownDomain, domain)
	}
	return code, nil
}

// Generate derives the identifier: prefix + domain short code + student id
// verbatim + upper-case 3-letter month + 2-digit year, no separators. Only
// the reference date's month and year contribute, so any date in the same
// month yields the same identifier. A zero reference date is an error; the
// caller flags the row rather than synthesizing a placeholder.
func (g *IDGenerator) Generate(domainCode, studentID string, referenceDate time.Time) (string, error) {
	if !g.codeSet[domainCode] {
		return "", fmt.Errorf("%w: short code %q", ErrUnknownDomain, domainCode)
	}
	if referenceDate.IsZero() {
		return "", ErrMissingReferenceDate
	}
	month := strings.ToUpper(referenceDate.Month().String()[:3])
	return fmt.Sprintf("%s%s%s%s%02d", idPrefix, domainCode, studentID, month, referenceDate.Year()%100), nil
}
