// Package runtimejs renders the browser-side JavaScript implementing
// the runtime loader surface described in spec §6: define, require,
// require.ensure and ensureBundle, backed by the same semver-maximal
// resolution and script-injection dedup rules as package registry.
//
// It is the JS-side twin of package registry — registry is what lets
// this repo's own tests exercise the resolution and bundle-dedup
// rules without a browser; runtimejs is what a built extension's
// chunk actually calls at runtime. The prelude text is templated
// (grounded on the teacher's prelude.go IIFE) rather than generated
// from registry's Go source, since the two run in different
// languages but must agree on the wire contract in §6.
package runtimejs

import (
	"bytes"
	"strings"

	"bitbucket.org/maxhauser/jsmin"
)

// Options configures the rendered prelude. Name must match the
// rewrite.Options.Name used to produce the chunks this prelude will
// load, since chunks call "<name>.define(...)" against the global it
// creates.
type Options struct {
	// Name is the global identifier the prelude installs itself under.
	// Defaults to "jupyter".
	Name string

	// Minify runs the rendered prelude through jsmin, as the teacher's
	// require_js.go did at init time.
	Minify bool
}

func (o Options) name() string {
	if o.Name == "" {
		return "jupyter"
	}
	return o.Name
}

// Render returns the prelude JS text. Embedding it once per page
// (ahead of any chunk script) is sufficient to install the registry
// global; every chunk's own script tag then only needs to call
// "<name>.define(...)" for each of its modules.
func Render(opts Options) ([]byte, error) {
	name := opts.name()
	src := strings.ReplaceAll(preludeTemplate, "__NAME__", name)
	if !opts.Minify {
		return []byte(src), nil
	}
	out := new(bytes.Buffer)
	jsmin.Run(strings.NewReader(src), out)
	return out.Bytes(), nil
}

// preludeTemplate implements the registry + bundle loader contract of
// spec §4.4/§4.5/§6 for a single global named __NAME__. It carries its
// own small semver matcher (exact, "^", "~" and "*" ranges) since the
// browser has no access to the Go semver package registry.Require
// uses server-side; the two are built to the same maximality rule
// (spec §8 property 4).
const preludeTemplate = `
(function(global) {
  var factories = {},   // exact path -> factory function
      instances = {},   // exact path -> { id, exports, loaded }
      cache     = {},   // requested path -> resolved exact path
      bundles   = {};   // url -> { state, waiters, resolve, reject, promise }

  function parsePath(s) {
    var m = /^(?:(@[^\/@]+)\/)?([^\/@]+)@([^\/@]+)(\/.*)?$/.exec(s);
    if (!m) return null;
    return {
      pkg: m[1] ? m[1] + '/' + m[2] : m[2],
      version: m[3],
      sub: m[4] || ''
    };
  }

  function compareVersions(a, b) {
    var pa = a.split('.'), pb = b.split('.');
    for (var i = 0; i < 3; i++) {
      var na = parseInt(pa[i], 10) || 0, nb = parseInt(pb[i], 10) || 0;
      if (na !== nb) return na - nb;
    }
    return 0;
  }

  function satisfies(version, range) {
    if (range === '*' || range === '') return true;
    if (range.charAt(0) === '^' || range.charAt(0) === '~') {
      var base = range.slice(1), bp = base.split('.');
      var vp = version.split('.');
      if (vp[0] !== bp[0]) return false;
      if (range.charAt(0) === '~' && vp[1] !== bp[1]) return false;
      return compareVersions(version, base) >= 0;
    }
    return version === range;
  }

  function define(path, factory) {
    if (factories.hasOwnProperty(path)) return; // first writer wins
    factories[path] = factory;
  }

  function resolve(requested) {
    if (cache.hasOwnProperty(requested)) return cache[requested];
    var req = parsePath(requested);
    if (!req) throw { code: 'BadPath', path: requested };

    var candidates = [];
    for (var key in factories) {
      if (!factories.hasOwnProperty(key)) continue;
      var p = parsePath(key);
      if (p && p.pkg === req.pkg && p.sub === req.sub) candidates.push(p);
    }
    if (candidates.length === 0) throw { code: 'NoMatch', pkg: req.pkg, sub: req.sub };

    var chosen = null;
    candidates.sort(function(a, b) { return compareVersions(b.version, a.version); });
    for (var i = 0; i < candidates.length; i++) {
      if (satisfies(candidates[i].version, req.version)) { chosen = candidates[i]; break; }
    }
    if (!chosen) throw { code: 'NoSatisfying', pkg: req.pkg, sub: req.sub, range: req.version };

    var exact = chosen.pkg + '@' + chosen.version + chosen.sub;
    cache[requested] = exact;
    return exact;
  }

  function instantiate(exact) {
    var existing = instances[exact];
    if (existing) return existing.exports;

    var factory = factories[exact];
    if (!factory) throw { code: 'NoMatch', path: exact };

    // Inserted before the factory runs so a cyclic require sees the
    // same (partially filled) exports object — spec §4.4 step 7.
    var inst = { id: exact, exports: {}, loaded: false };
    instances[exact] = inst;
    factory(inst, inst.exports, boundRequire);
    inst.loaded = true;
    return inst.exports;
  }

  function requireFn(requested) {
    return instantiate(resolve(requested));
  }

  function injectScript(url, onDone) {
    var el = document.createElement('script');
    el.src = url;
    el.async = true;
    el.onload = function() { onDone(null); };
    el.onerror = function() { onDone(new Error('script load failed: ' + url)); };
    document.head.appendChild(el);
  }

  function ensureBundle(url, callback) {
    var entry = bundles[url];
    if (entry) {
      if (entry.state === 'loaded') {
        if (callback) callback(boundRequire);
        return entry.promise;
      }
      if (entry.state === 'failed') {
        return entry.promise; // terminal, no retry
      }
      if (callback) entry.waiters.push(callback);
      return entry.promise;
    }

    entry = { state: 'pending', waiters: callback ? [callback] : [] };
    var resolveFn, rejectFn;
    entry.promise = new Promise(function(res, rej) { resolveFn = res; rejectFn = rej; });
    bundles[url] = entry;

    injectScript(url, function(err) {
      if (err) {
        entry.state = 'failed';
        var waiters = entry.waiters;
        entry.waiters = [];
        rejectFn({ code: 'BundleLoadFailed', url: url, cause: err });
        return;
      }
      entry.state = 'loaded';
      var waiters = entry.waiters;
      entry.waiters = [];
      for (var i = 0; i < waiters.length; i++) waiters[i](boundRequire);
      resolveFn();
    });

    return entry.promise;
  }

  requireFn.ensure = ensureBundle;
  var boundRequire = requireFn;

  global.__NAME__ = {
    define: define,
    require: requireFn,
    ensureBundle: ensureBundle
  };
})(this);
`
