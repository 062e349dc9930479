// Package registry implements the browser-side half of the system: an
// in-process module arena that records define()d factories keyed by
// exact version, resolves require()d semver ranges against them, and
// fetches additional chunks on demand through a BundleLoader.
//
// A Registry owns all factories and instances by value; modules never
// reference each other directly, only through string paths passed to
// require. That indirection through the arena is what lets two
// extensions built independently share one instance of an overlapping
// dependency.
package registry

import (
	"errors"
	"sort"
	"sync"

	"github.com/Masterminds/semver/v3"

	"github.com/jupyter/extension-builder/vpath"
)

// errNoSatisfyingSentinel signals selectMaxSatisfying found no
// candidate in range; callers translate it into the richer
// NoSatisfying error with pkg/sub/range context.
var errNoSatisfyingSentinel = errors.New("no satisfying version")

// Exports is the object a module's factory populates. Because it is a
// map, the same Exports value observed by a cyclic require partner
// before the factory finishes running is the same one the factory
// goes on to fill in — the cycle-tolerance property in spec §8.6.
type Exports map[string]any

// Module is passed to a factory as the conventional CommonJS "module"
// argument. Loaded flips false -> true exactly once, after the
// factory returns.
type Module struct {
	ID      string
	Exports Exports
	Loaded  bool
}

// Factory populates exports (and may mutate module, e.g. to swap out
// module.Exports entirely — rare, but some modules replace the
// object).
type Factory func(module *Module, exports Exports, require BoundRequire)

type moduleEntry struct {
	factory  Factory
	instance *Module
}

// Registry is a single arena: registered factories, live instances,
// the resolution cache, and a bundle loader. A host may run multiple
// Registry instances for isolation; nothing is shared between them.
type Registry struct {
	mu        sync.Mutex
	factories map[string]*moduleEntry
	cache     map[string]string
	loader    *BundleLoader
}

// New returns an empty Registry with its own BundleLoader using the
// given ScriptInjector. Pass nil to use NopInjector, which fails every
// bundle immediately — fine for registries that only ever Define
// modules directly and never ensureBundle.
func New(injector ScriptInjector) *Registry {
	if injector == nil {
		injector = NopInjector{}
	}
	r := &Registry{
		factories: make(map[string]*moduleEntry),
		cache:     make(map[string]string),
	}
	r.loader = newBundleLoader(r, injector)
	return r
}

// Define records factory under the exact-version path. Re-definition
// of an already-defined path is a no-op: first writer wins. This is
// what lets multiple independently built chunks carry overlapping
// copies of a shared library without one clobbering the other.
func (r *Registry) Define(path string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[path]; exists {
		return
	}
	r.factories[path] = &moduleEntry{factory: factory}
}

// Resolve performs spec §4.4 steps 1-5: cache lookup, grammar parse,
// candidate enumeration, and semver-maximal selection, without
// instantiating anything. Require builds on top of this.
func (r *Registry) Resolve(rangedPath string) (vpath.Path, error) {
	r.mu.Lock()
	if resolved, ok := r.cache[rangedPath]; ok {
		r.mu.Unlock()
		p, _ := vpath.Parse(resolved)
		return p, nil
	}
	r.mu.Unlock()

	req, ok := vpath.Parse(rangedPath)
	if !ok {
		return vpath.Path{}, errBadPath(rangedPath)
	}

	r.mu.Lock()
	var candidates []vpath.Path
	for key := range r.factories {
		p, ok := vpath.Parse(key)
		if !ok || p.Pkg != req.Pkg || p.Sub != req.Sub {
			continue
		}
		candidates = append(candidates, p)
	}
	r.mu.Unlock()

	if len(candidates) == 0 {
		return vpath.Path{}, errNoMatch(req.Pkg, req.Sub)
	}

	chosen, err := selectMaxSatisfying(candidates, req.Version)
	if err != nil {
		return vpath.Path{}, errNoSatisfying(req.Pkg, req.Sub, req.Version)
	}

	r.mu.Lock()
	r.cache[rangedPath] = chosen.String()
	r.mu.Unlock()
	return chosen, nil
}

// selectMaxSatisfying picks, among candidates, the greatest version
// (by semver ordering) that satisfies rng. Candidates whose Version
// does not itself parse as a semver version are skipped rather than
// failing the whole selection — a malformed registration should not
// poison resolution for its well-formed siblings.
func selectMaxSatisfying(candidates []vpath.Path, rng string) (vpath.Path, error) {
	constraint, err := semver.NewConstraint(rng)
	if err != nil {
		return vpath.Path{}, err
	}

	// Sort descending by semver order (plain string order for versions
	// that do not parse) before scanning, giving
	// deterministic tie-break behavior and cheap short-circuiting.
	sort.Slice(candidates, func(i, j int) bool {
		vi, erri := semver.NewVersion(candidates[i].Version)
		vj, errj := semver.NewVersion(candidates[j].Version)
		if erri != nil || errj != nil {
			return candidates[i].Version > candidates[j].Version
		}
		return vi.GreaterThan(vj)
	})

	for _, c := range candidates {
		v, err := semver.NewVersion(c.Version)
		if err != nil {
			continue
		}
		if constraint.Check(v) {
			return c, nil
		}
	}
	return vpath.Path{}, errNoSatisfyingSentinel
}

// Require performs full resolution (Resolve) followed by
// instantiate-once-and-cache semantics: spec §4.4 steps 6-7.
func (r *Registry) Require(rangedPath string) (Exports, error) {
	path, err := r.Resolve(rangedPath)
	if err != nil {
		return nil, err
	}
	return r.instantiate(path.String())
}

func (r *Registry) instantiate(exactPath string) (Exports, error) {
	r.mu.Lock()
	entry, ok := r.factories[exactPath]
	if !ok {
		r.mu.Unlock()
		p, _ := vpath.Parse(exactPath)
		return nil, errNoMatch(p.Pkg, p.Sub)
	}
	if entry.instance != nil {
		inst := entry.instance
		r.mu.Unlock()
		return inst.Exports, nil
	}

	// Insert the instance before invoking the factory so a cyclic
	// require observes the same (partially filled) exports object.
	inst := &Module{ID: exactPath, Exports: make(Exports)}
	entry.instance = inst
	factory := entry.factory
	r.mu.Unlock()

	factory(inst, inst.Exports, r.bound())

	r.mu.Lock()
	inst.Loaded = true
	r.mu.Unlock()
	return inst.Exports, nil
}

// bound returns the stable require function value passed to
// factories: a single value carrying Require and Ensure methods, matching
// the spec §6 require/require.ensure surface.
func (r *Registry) bound() BoundRequire {
	return BoundRequire{reg: r}
}

// EnsureBundle is the sole mechanism for bringing new Define calls
// into the registry. See BundleLoader.Ensure.
func (r *Registry) EnsureBundle(url string, callback func(BoundRequire)) *Future {
	return r.loader.Ensure(url, callback)
}

// Snapshot lists the currently defined exact paths, sorted, for
// debugging and introspection. It does not mutate the registry.
func (r *Registry) Snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BoundRequire is the value handed to factories and returned by
// Registry.bound. It carries both require-call forms described in
// spec §6: the ranged-path call and .Ensure (require.ensure).
type BoundRequire struct {
	reg *Registry
}

// Require resolves and instantiates rangedPath against the bound
// registry.
func (b BoundRequire) Require(rangedPath string) (Exports, error) {
	return b.reg.Require(rangedPath)
}

// Ensure fetches url's chunk into the bound registry, invoking
// callback once it (and any already-pending fetch of the same url)
// settles successfully.
func (b BoundRequire) Ensure(url string, callback func(BoundRequire)) *Future {
	return b.reg.EnsureBundle(url, callback)
}
