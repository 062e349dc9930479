// Package jslib catalogs externally-hosted shared libraries an
// extension may depend on without the rewriter ever seeing their
// source: each entry names the exact-version path the library
// self-registers under once its script runs, and the CDN URL to fetch
// it from. A host wires an entry's URL into registry.EnsureBundle the
// same way it would any other chunk; the library's own script is
// expected to call "<name>.define(Path, factory)" once loaded, just
// like a rewritten chunk would.
//
// Kept from the teacher's jslib.go, whose jQuery/Bootstrap entries
// were content-addressed by bare name alone; here they carry the
// versioned path a registry resolves against, so an extension that
// declares "jquery": "^1.8.0" resolves straight to one of these
// shared instances instead of bundling its own copy.
package jslib

import "github.com/jupyter/extension-builder/registry"

// Entry names one pre-registered, externally-hosted module: the
// exact-version path it defines itself under, and the URL a bundle
// loader fetches to bring that definition into a registry.
type Entry struct {
	Path string
	URL  string
}

// Ensure fetches e's script into reg via ensureBundle, deduplicating
// with any other code that has already requested the same URL.
func (e Entry) Ensure(reg *registry.Registry, callback func(registry.BoundRequire)) *registry.Future {
	return reg.EnsureBundle(e.URL, callback)
}

var JQuery_1_8_2 = Entry{
	Path: "jquery@1.8.2",
	URL:  "https://code.jquery.com/jquery-1.8.2.min.js",
}

var Bootstrap_2_2_2 = Entry{
	Path: "bootstrap@2.2.2",
	URL:  "https://cdnjs.cloudflare.com/ajax/libs/twitter-bootstrap/2.2.2/bootstrap.min.js",
}
