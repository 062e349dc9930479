package registry

import (
	"errors"

	"github.com/samber/oops"
)

// errNopInjector is the failure NopInjector hands every fetch.
var errNopInjector = errors.New("registry: no ScriptInjector configured")

func errBadPath(raw string) error {
	return oops.Code("BadPath").
		With("path", raw).
		Errorf("%q does not match the versioned-path grammar", raw)
}

func errNoMatch(pkg, sub string) error {
	return oops.Code("NoMatch").
		With("pkg", pkg).
		With("sub", sub).
		Errorf("no registered module shares (%s, %s)", pkg, sub)
}

func errNoSatisfying(pkg, sub, rng string) error {
	return oops.Code("NoSatisfying").
		With("pkg", pkg).
		With("sub", sub).
		With("range", rng).
		Errorf("no registered version of %s%s satisfies %s", pkg, sub, rng)
}

func errBundleLoadFailed(url string, cause error) error {
	return oops.Code("BundleLoadFailed").
		With("url", url).
		Wrapf(cause, "bundle %s failed to load", url)
}
