package runtimejs_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jupyter/extension-builder/runtimejs"
)

func TestRenderDefaultName(t *testing.T) {
	t.Parallel()
	out, err := runtimejs.Render(runtimejs.Options{})
	require.NoError(t, err)
	src := string(out)
	assert.Contains(t, src, "global.jupyter = {")
	assert.Contains(t, src, "define: define")
	assert.Contains(t, src, "ensureBundle: ensureBundle")
}

func TestRenderCustomName(t *testing.T) {
	t.Parallel()
	out, err := runtimejs.Render(runtimejs.Options{Name: "acmeRuntime"})
	require.NoError(t, err)
	src := string(out)
	assert.Contains(t, src, "global.acmeRuntime = {")
	assert.NotContains(t, src, "__NAME__")
}

func TestRenderMinifyShrinksOutput(t *testing.T) {
	t.Parallel()
	plain, err := runtimejs.Render(runtimejs.Options{})
	require.NoError(t, err)
	minified, err := runtimejs.Render(runtimejs.Options{Minify: true})
	require.NoError(t, err)

	assert.Less(t, len(minified), len(plain))
	// Minification must not touch the installed global's name.
	assert.True(t, strings.Contains(string(minified), "jupyter"))
}
