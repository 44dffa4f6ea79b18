package application

import (
	"strings"
	"unicode"
)

// DomainPolicy restricts registration to a list of email suffixes. An empty
// policy admits every address.
type DomainPolicy struct {
	suffixes []string
}

// ParseDomainPolicy reads a comma separated list such as
// `"example.com", @corp.example`. Whitespace is removed, surrounding quotes
// are stripped and a leading "@" is added when missing.
func ParseDomainPolicy(raw string) DomainPolicy {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	var suffixes []string
	for _, part := range strings.Split(compact, ",") {
		domain := strings.Trim(part, `"'`)
		if domain == "" {
			continue
		}
		if !strings.HasPrefix(domain, "@") {
			domain = "@" + domain
		}
		suffixes = append(suffixes, strings.ToLower(domain))
	}
	return DomainPolicy{suffixes: suffixes}
}

// Open reports whether the policy admits every address.
func (p DomainPolicy) Open() bool {
	return len(p.suffixes) == 0
}

// Domains returns the configured suffixes.
func (p DomainPolicy) Domains() []string {
	return append([]string(nil), p.suffixes...)
}

// Allows reports whether email may register.
func (p DomainPolicy) Allows(email string) bool {
	if p.Open() {
		return true
	}
	email = normalizeEmail(email)
	for _, suffix := range p.suffixes {
		if strings.HasSuffix(email, suffix) {
			return true
		}
	}
	return false
}
