// Package jsh provides go.h compatible script tags that bootstrap a
// rewritten extension chunk in a host page: an inline script carrying
// the runtime prelude, followed by an inline bootstrap script that
// loads the chunk through ensureBundle and issues any calls. No
// separate script tag for the chunk is emitted; ensureBundle injects
// it.
//
// Kept from the teacher's jsh.go, whose AppScripts emitted a bare
// CommonJS prelude and a require/execute queue; this version emits
// the versioned-path runtime prelude (package runtimejs) and drives
// the chunk through ensureBundle + require(manifest.Entry), the
// contract spec §6 describes for a host application.
package jsh

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/daaku/go.h"

	"github.com/jupyter/extension-builder/manifest"
)

// Call describes one method invocation made against a module's
// exports once the bootstrapped chunk has loaded, analogous to the
// teacher's Call but addressed by versioned require path rather than
// bare module name.
type Call struct {
	RequirePath string        `json:"requirePath"`
	Function    string        `json:"fn"`
	Args        []interface{} `json:"args"`
}

// Bootstrap renders the script tags needed to bring up one rewritten
// extension chunk: an inline script installing the runtime prelude
// under Name, followed by an inline script that ensureBundles Shared
// and ChunkURL and issues Calls once the chunk is live.
type Bootstrap struct {
	// Name must match the rewrite.Options.Name (and runtimejs.Options.Name)
	// used to produce Prelude and Manifest.
	Name string

	// Prelude is the rendered runtimejs output (see runtimejs.Render).
	Prelude []byte

	// Manifest is the chunk's manifest; its Entry names the path the
	// host resolves to obtain the extension's plugin descriptor(s).
	Manifest manifest.Chunk

	// ChunkURL is the absolute or root-relative URL serving the
	// rewritten chunk asset Manifest describes.
	ChunkURL string

	// Calls fire, in order, once the chunk has loaded and its entry
	// module has been resolved.
	Calls []Call

	// Shared lists externally-hosted bundle URLs (e.g. jslib entries)
	// to ensureBundle ahead of the extension chunk itself, so a shared
	// dependency is already registered by the time the chunk's own
	// require calls resolve against it.
	Shared []string
}

func (b *Bootstrap) name() string {
	if b.Name == "" {
		return "jupyter"
	}
	return b.Name
}

func (b *Bootstrap) HTML() (h.HTML, error) {
	name := b.name()
	buf := new(bytes.Buffer)

	for _, url := range b.Shared {
		fmt.Fprintf(buf, "%s.ensureBundle(%q);\n", name, url)
	}

	fmt.Fprintf(buf, "%s.ensureBundle(%q, function(require) {\n", name, b.ChunkURL)
	if b.Manifest.Entry != "" {
		fmt.Fprintf(buf, "  var entry = require(%q);\n", b.Manifest.Entry)
	}
	for _, call := range b.Calls {
		tmp, err := json.Marshal(call)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(buf, "  (function(c) { require(c.requirePath)[c.fn].apply(null, c.args); })(%s);\n", tmp)
	}
	buf.WriteString("});\n")

	return &h.Frag{
		&h.Script{
			Inner: &h.Frag{h.UnsafeBytes(b.Prelude)},
		},
		&h.Script{
			Inner: &h.Frag{h.UnsafeBytes(buf.Bytes())},
		},
	}, nil
}
