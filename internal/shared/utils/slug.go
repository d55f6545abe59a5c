package utils

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	slugPattern      = regexp.MustCompile(`^[a-z0-9-]+$`)
	slugInvalidChars = regexp.MustCompile(`[^a-z0-9-]+`)
	slugDashRuns     = regexp.MustCompile(`-+`)
)

// reservedSlugs covers application routes and generic terms that can never
// be claimed as a public page path.
var reservedSlugs = map[string]struct{}{
	"about": {}, "account": {}, "accounts": {}, "admin": {}, "api": {},
	"app": {}, "assets": {}, "auth": {}, "billing": {}, "blog": {},
	"checkout": {}, "contact": {}, "dashboard": {}, "docs": {}, "domain": {},
	"domains": {}, "edit": {}, "editor": {}, "folio": {}, "help": {},
	"home": {}, "login": {}, "logout": {}, "new": {}, "pricing": {},
	"portfolio": {}, "portfolios": {}, "preview": {}, "privacy": {}, "public": {},
	"register": {}, "root": {}, "settings": {}, "signin": {}, "signup": {},
	"static": {}, "status": {}, "support": {}, "terms": {}, "upgrade": {},
	"uploads": {}, "user": {}, "users": {}, "webhooks": {}, "www": {},
}

// IsValidSlug reports whether s matches ^[a-z0-9-]+$ as submitted.
func IsValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// IsReservedSlug checks the lowercased slug against the reserved list.
func IsReservedSlug(s string) bool {
	_, ok := reservedSlugs[strings.ToLower(s)]
	return ok
}

// GenerateSlug derives a slug suggestion from free text.
// "Jane Doe's Work!" -> "jane-does-work"
func GenerateSlug(input string) string {
	lower := strings.ToLower(strings.TrimSpace(input))
	hyphenated := strings.ReplaceAll(lower, " ", "-")
	cleaned := slugInvalidChars.ReplaceAllString(hyphenated, "")
	normalized := slugDashRuns.ReplaceAllString(cleaned, "-")
	return strings.Trim(normalized, "-")
}

// NormalizeDomain lowercases a user supplied domain and strips scheme,
// path, port and trailing dot. "https://WWW.Example.com/" -> "www.example.com"
func NormalizeDomain(raw string) string {
	d := strings.TrimSpace(strings.ToLower(raw))
	if d == "" {
		return ""
	}
	if strings.Contains(d, "://") {
		if u, err := url.Parse(d); err == nil && u.Host != "" {
			d = u.Host
		}
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.LastIndex(d, ":"); i >= 0 {
		d = d[:i]
	}
	return strings.TrimSuffix(d, ".")
}
