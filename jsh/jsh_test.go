package jsh_test

import (
	"strings"
	"testing"

	"github.com/daaku/go.h"

	"github.com/jupyter/extension-builder/jsh"
	"github.com/jupyter/extension-builder/manifest"
)

func TestSanity(t *testing.T) {
	t.Parallel()
	var (
		m = manifest.Chunk{
			Entry: "acme@1.4.2/lib/m.js",
			Hash:  "abc123",
			ID:    "main",
			Name:  "main",
			Files: []string{"main.js"},
		}
		bootstrap = &jsh.Bootstrap{
			Name:     "jupyter",
			Prelude:  []byte("/* prelude */"),
			Manifest: m,
			ChunkURL: "/r/main.js",
			Shared:   []string{"https://code.jquery.com/jquery-1.8.2.min.js"},
			Calls: []jsh.Call{
				{RequirePath: "acme@1.4.2/lib/m.js", Function: "log", Args: []interface{}{"cjse-log"}},
			},
		}
		expectedThings = []string{
			"/* prelude */",
			`jupyter.ensureBundle("https://code.jquery.com/jquery-1.8.2.min.js");`,
			`jupyter.ensureBundle("/r/main.js", function(require) {`,
			`require("acme@1.4.2/lib/m.js")`,
			`"requirePath":"acme@1.4.2/lib/m.js"`,
			`"fn":"log"`,
		}
		actualHTML, err = h.Render(bootstrap)
	)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range expectedThings {
		if !strings.Contains(actualHTML, e) {
			t.Fatalf("did not find %q in:\n%s", e, actualHTML)
		}
	}
}

func TestDefaultName(t *testing.T) {
	t.Parallel()
	bootstrap := &jsh.Bootstrap{ChunkURL: "/r/x.js"}
	actualHTML, err := h.Render(bootstrap)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(actualHTML, "jupyter.ensureBundle(") {
		t.Fatalf("expected default name %q, got:\n%s", "jupyter", actualHTML)
	}
}
