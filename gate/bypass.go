package gate

import (
	"fmt"
	"path"
	"strings"

	"github.com/jrsteele09/go-auth-broker/internal/errors"
)

// DefaultBypassPatterns are the paths served without consulting the gate:
// API routes, static assets, the favicon and the login page itself.
var DefaultBypassPatterns = []string{
	"/api/**",
	"/_next/static/**",
	"/_next/image/**",
	"/favicon.ico",
	"/login",
	"/login/**",
}

const subtreeSuffix = "/**"

// Pattern is one bypass predicate.
// "/prefix/**" matches /prefix and everything below it; anything else is a
// path.Match glob, where * never crosses a slash.
type Pattern struct {
	raw   string
	match func(requestPath string) bool
}

// ParsePattern compiles raw into a Pattern
func ParsePattern(raw string) (Pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return Pattern{}, fmt.Errorf("%w: %q must start with /", errors.ErrInvalidPattern, raw)
	}

	if prefix, ok := strings.CutSuffix(raw, subtreeSuffix); ok {
		if strings.ContainsAny(prefix, "*?[") {
			return Pattern{}, fmt.Errorf("%w: %q mixes ** with other wildcards", errors.ErrInvalidPattern, raw)
		}
		return Pattern{
			raw: raw,
			match: func(p string) bool {
				return p == prefix || strings.HasPrefix(p, prefix+"/") || (prefix == "" && strings.HasPrefix(p, "/"))
			},
		}, nil
	}

	if _, err := path.Match(raw, ""); err != nil {
		return Pattern{}, fmt.Errorf("%w: %q: %w", errors.ErrInvalidPattern, raw, err)
	}
	return Pattern{
		raw: raw,
		match: func(p string) bool {
			ok, _ := path.Match(raw, p)
			return ok
		},
	}, nil
}

// String returns the pattern as configured
func (p Pattern) String() string {
	return p.raw
}

// Matches reports whether requestPath is covered by the pattern
func (p Pattern) Matches(requestPath string) bool {
	return p.match != nil && p.match(requestPath)
}

// Bypass is an ordered list of patterns; the first match wins
type Bypass []Pattern

// NewBypass compiles patterns in order
func NewBypass(patterns ...string) (Bypass, error) {
	b := make(Bypass, 0, len(patterns))
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		p, err := ParsePattern(raw)
		if err != nil {
			return nil, err
		}
		b = append(b, p)
	}
	return b, nil
}

// Match returns the first pattern covering requestPath
func (b Bypass) Match(requestPath string) (Pattern, bool) {
	for _, p := range b {
		if p.Matches(requestPath) {
			return p, true
		}
	}
	return Pattern{}, false
}

// Policy runs the bypass list and then the gate
type Policy struct {
	Bypass Bypass
	Gate   Gate
}

// Decide returns Bypassed for allow-listed paths and the gate's decision otherwise
func (p Policy) Decide(requestPath string, isLoggedIn bool) Decision {
	if _, ok := p.Bypass.Match(requestPath); ok {
		return Decision{Kind: Bypassed}
	}
	return p.Gate.Evaluate(requestPath, isLoggedIn)
}
