package middleware

import "strings"

// DefaultPublicPaths are reachable without a bearer token.
var DefaultPublicPaths = []string{
	"/auth/login",
	"/auth/register",
	"/health",
	"/health/ready",
	"/metrics",
	"/swagger/*",
}

// AccessPolicy decides whether a request path is public. Patterns are either
// exact paths or a prefix ending in "/*", which also matches the bare prefix.
type AccessPolicy struct {
	exact    map[string]struct{}
	prefixes []string
}

// NewAccessPolicy builds a policy from DefaultPublicPaths plus extra patterns.
// Blank patterns are ignored.
func NewAccessPolicy(extra ...string) *AccessPolicy {
	p := &AccessPolicy{exact: make(map[string]struct{})}
	for _, pattern := range append(append([]string{}, DefaultPublicPaths...), extra...) {
		p.add(pattern)
	}
	return p
}

func (p *AccessPolicy) add(pattern string) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return
	}
	if prefix, ok := strings.CutSuffix(pattern, "/*"); ok {
		p.prefixes = append(p.prefixes, prefix)
		return
	}
	p.exact[normalizePath(pattern)] = struct{}{}
}

// IsPublic reports whether path may be served without authentication.
func (p *AccessPolicy) IsPublic(path string) bool {
	path = normalizePath(path)
	if _, ok := p.exact[path]; ok {
		return true
	}
	for _, prefix := range p.prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func normalizePath(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	if path == "" {
		return "/"
	}
	return path
}
