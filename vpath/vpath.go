// Package vpath implements the versioned-path grammar modules are
// addressed by: name@version/subpath at definition sites and
// name@semverRange/subpath at require sites.
package vpath

import "regexp"

// rePath splits a versioned path into an optional scope, a bare
// package name, a version (exact or range) and an optional subpath.
// The scope and name character classes exclude "/" and "@", so the
// optional scope group cannot run past its own "/" and
// "@scope/pkg@1.0.0/lib/x.js" yields pkg="@scope/pkg", not a split
// across the "@" inside the version.
var rePath = regexp.MustCompile(`^(?:(@[^/@]+)/)?([^/@]+)@([^/@]+)(/.*)?$`)

// Path is a parsed name@version/subpath identifier. Pkg may begin
// with "@scope/". Version is an exact version on definition sites and
// a semver range on require sites; Path does not distinguish the two,
// callers know which they expect from context.
type Path struct {
	Pkg     string
	Version string
	Sub     string
}

// Parse decodes s into a Path. It reports false if s does not match
// the grammar.
func Parse(s string) (Path, bool) {
	m := rePath.FindStringSubmatch(s)
	if m == nil {
		return Path{}, false
	}
	scope, name, version, sub := m[1], m[2], m[3], m[4]
	pkg := name
	if scope != "" {
		pkg = scope + "/" + name
	}
	return Path{Pkg: pkg, Version: version, Sub: sub}, true
}

// String renders p back to its canonical form. For every valid s,
// String on the result of Parse(s) returns s.
func (p Path) String() string {
	return p.Pkg + "@" + p.Version + p.Sub
}

// WithVersion returns a copy of p addressed at a different version or
// range, same package and subpath.
func (p Path) WithVersion(version string) Path {
	p.Version = version
	return p
}

// Scoped reports whether Pkg carries an "@scope/" prefix.
func (p Path) Scoped() bool {
	return len(p.Pkg) > 0 && p.Pkg[0] == '@'
}
