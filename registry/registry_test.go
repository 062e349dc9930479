package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupyter/extension-builder/registry"
)

func versionFactory(version string) registry.Factory {
	return func(m *registry.Module, exports registry.Exports, req registry.BoundRequire) {
		exports["v"] = version
	}
}

// S1 — resolution.
func TestRequireResolvesMaximalSatisfying(t *testing.T) {
	t.Parallel()
	r := registry.New(nil)
	r.Define("foo@1.0.0", versionFactory("1.0.0"))
	r.Define("foo@1.2.3", versionFactory("1.2.3"))

	exp, err := r.Require("foo@^1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", exp["v"])

	exp, err = r.Require("foo@~1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", exp["v"])
}

// S2 — empty match.
func TestRequireNoMatch(t *testing.T) {
	t.Parallel()
	r := registry.New(nil)
	r.Define("foo@1.2.3", versionFactory("1.2.3"))

	_, err := r.Require("bar@^1.0.0")
	require.Error(t, err)
}

// S3 — no satisfying.
func TestRequireNoSatisfying(t *testing.T) {
	t.Parallel()
	r := registry.New(nil)
	r.Define("foo@1.2.3", versionFactory("1.2.3"))

	_, err := r.Require("foo@^2.0.0")
	require.Error(t, err)
}

// Property 2 — define idempotence.
func TestDefineIdempotent(t *testing.T) {
	t.Parallel()
	r := registry.New(nil)
	calls := 0
	r.Define("foo@1.0.0", func(m *registry.Module, exports registry.Exports, req registry.BoundRequire) {
		calls++
		exports["who"] = "first"
	})
	r.Define("foo@1.0.0", func(m *registry.Module, exports registry.Exports, req registry.BoundRequire) {
		calls++
		exports["who"] = "second"
	})

	for i := 0; i < 5; i++ {
		exp, err := r.Require("foo@^1.0.0")
		require.NoError(t, err)
		assert.Equal(t, "first", exp["who"])
	}
	assert.Equal(t, 1, calls, "factory must run exactly once across arbitrarily many requires")
}

// Property 3 — require determinism / identity.
func TestRequireReturnsSameExportsByIdentity(t *testing.T) {
	t.Parallel()
	r := registry.New(nil)
	r.Define("foo@1.0.0", versionFactory("1.0.0"))

	a, err := r.Require("foo@^1.0.0")
	require.NoError(t, err)
	b, err := r.Require("foo@^1.0.0")
	require.NoError(t, err)

	a["mutated"] = true
	assert.True(t, b["mutated"].(bool), "must be the same object by identity")
}

// Property 6 / S-cycle — cycle tolerance.
func TestCyclicRequireResolves(t *testing.T) {
	t.Parallel()
	r := registry.New(nil)
	var bFromA, aFromB any

	r.Define("a@1.0.0", func(m *registry.Module, exports registry.Exports, req registry.BoundRequire) {
		bExports, err := req.Require("b@^1.0.0")
		require.NoError(t, err)
		bFromA = bExports["name"]
		exports["name"] = "a"
	})
	r.Define("b@1.0.0", func(m *registry.Module, exports registry.Exports, req registry.BoundRequire) {
		exports["name"] = "b"
		aExports, err := req.Require("a@^1.0.0")
		require.NoError(t, err)
		aFromB = aExports["name"]
	})

	exp, err := r.Require("a@^1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "a", exp["name"])
	assert.Equal(t, "b", bFromA)
	assert.Nil(t, aFromB, "b's cyclic read of a's not-yet-assigned export must be undefined (nil), not an error")
}

func TestScopedPackageResolution(t *testing.T) {
	t.Parallel()
	r := registry.New(nil)
	r.Define("@scope/pkg@1.0.0/lib/x.js", versionFactory("1.0.0"))

	exp, err := r.Require("@scope/pkg@^1.0.0/lib/x.js")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", exp["v"])
}

func TestRequireBadPath(t *testing.T) {
	t.Parallel()
	r := registry.New(nil)
	_, err := r.Require("not-a-path")
	require.Error(t, err)
}

func TestSnapshotSortedAndReadOnly(t *testing.T) {
	t.Parallel()
	r := registry.New(nil)
	r.Define("b@1.0.0", versionFactory("1.0.0"))
	r.Define("a@1.0.0", versionFactory("1.0.0"))

	snap := r.Snapshot()
	assert.Equal(t, []string{"a@1.0.0", "b@1.0.0"}, snap)

	snap[0] = "z@9.9.9"
	assert.Equal(t, []string{"a@1.0.0", "b@1.0.0"}, r.Snapshot(), "mutating a snapshot must not affect the registry")
}

func TestResolveCacheDoesNotPoisonOnFailure(t *testing.T) {
	t.Parallel()
	r := registry.New(nil)
	r.Define("foo@1.0.0", versionFactory("1.0.0"))

	_, err := r.Require("foo@^2.0.0")
	require.Error(t, err)

	// A different, satisfiable range for the same package must still
	// succeed — the earlier failure must not have poisoned anything.
	exp, err := r.Require("foo@^1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", exp["v"])
}
