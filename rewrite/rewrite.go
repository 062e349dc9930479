// Package rewrite implements the version-aware module rewriter: a
// bundler post-processing hook that replaces a finished compilation's
// numeric internal module ids with versioned string addresses and
// emits a manifest per chunk.
//
// It must run after the bundler finalizes numeric ids (used
// internally for graph encoding) but before the chunk assets are
// written — any earlier and downstream bundler code that indexes
// modules numerically breaks, any later and the emitted files have
// already been committed.
package rewrite

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"

	"github.com/charmbracelet/log"

	"github.com/jupyter/extension-builder/manifest"
)

var (
	reAsyncChunk = regexp.MustCompile(`__internalRequire\.e(?:/\*!.*?\*/)?\((\d+)\)`)
	reSyncModule = regexp.MustCompile(`__internalRequire\((?:/\*!.*?\*/\s*)?(\d+)\)`)
	rePublicPath = regexp.MustCompile(`__internalRequire\.p\b`)
	reBareSymbol = regexp.MustCompile(`__internalRequire\b`)
)

// Output is one rewritten chunk: its replacement asset body and the
// companion manifest to write alongside it.
type Output struct {
	AssetName    string
	Body         []byte
	ManifestName string
	Manifest     manifest.Chunk
}

// Rewrite post-processes every chunk in comp, returning one Output
// per chunk. All errors are fatal to the build (spec §4.3).
func Rewrite(comp *Compilation, opts Options) ([]Output, error) {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false, Prefix: "rewrite"})
	chunkFiles := make(map[string][]string, len(comp.Chunks))
	for _, c := range comp.Chunks {
		chunkFiles[c.ID] = c.Files
	}

	outputs := make([]Output, 0, len(comp.Chunks))
	for _, chunk := range comp.Chunks {
		out, err := rewriteChunk(chunk, comp, opts, logger)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

func rewriteChunk(chunk *Chunk, comp *Compilation, opts Options, logger *log.Logger) (Output, error) {
	requireName := opts.requireSymbol()
	name := opts.name()

	var body bytes.Buffer
	moduleDeps := make(map[string][]string, len(chunk.ModuleIDs))
	var entryDefinePath string

	for i, modID := range chunk.ModuleIDs {
		mod, ok := comp.Modules[modID]
		if !ok {
			return Output{}, errUnknownModule(chunk.Name, modID)
		}
		if mod.External {
			return Output{}, errExternalNotAllowed(mod.Path)
		}

		own, err := definePath(mod, opts.ProjectRoot)
		if err != nil {
			return Output{}, err
		}
		if i == 0 {
			entryDefinePath = own
		}

		var transformed string
		var deps []string
		if mod.Context != nil {
			transformed, err = synthesizeContext(mod, comp, opts, requireName)
			if err != nil {
				return Output{}, err
			}
			reqs := make([]string, 0, len(mod.Context.Requests))
			for req := range mod.Context.Requests {
				reqs = append(reqs, req)
			}
			sort.Strings(reqs)
			for _, req := range reqs {
				target := comp.Modules[mod.Context.Requests[req]]
				p, err := requirePath(mod, target, opts.ProjectRoot)
				if err != nil {
					return Output{}, err
				}
				deps = append(deps, p)
			}
		} else {
			transformed, deps, err = rewriteSource(mod, comp, chunk, opts, requireName)
			if err != nil {
				return Output{}, err
			}
		}
		moduleDeps[own] = deps

		fmt.Fprintf(&body, "/* %s */\n", own)
		fmt.Fprintf(&body, "%s.define(%q, function(module, exports, %s) {\n", name, own, requireName)
		body.WriteString(transformed)
		body.WriteString("\n});\n")
		fmt.Fprintf(&body, "/* end %s */\n", own)

		logger.Debug("rewrote module", "chunk", chunk.Name, "path", own)
	}

	final := body.Bytes()
	if opts.Minify != nil {
		minified, err := opts.Minify.Transform(final)
		if err != nil {
			return Output{}, err
		}
		final = minified
	}

	m := manifest.New(chunk.ID, chunk.Name, chunk.Files, moduleDeps, final)
	if chunk.Entry {
		m.Entry = entryDefinePath
	}

	assetName := chunk.Name + ".js"
	if len(chunk.Files) > 0 {
		assetName = chunk.Files[0]
	}
	return Output{
		AssetName:    assetName,
		Body:         final,
		ManifestName: assetName + ".manifest",
		Manifest:     m,
	}, nil
}

// rewriteSource applies the textual transform to a regular (non-context)
// module: async chunk refs, sync module refs, the public-path
// sentinel, then the final symbol rename. It returns the transformed
// body and the list of require paths it emits, in source order.
func rewriteSource(mod *Module, comp *Compilation, chunk *Chunk, opts Options, requireName string) (string, []string, error) {
	src := string(mod.Source)
	var deps []string
	var stepErr error

	src = reAsyncChunk.ReplaceAllStringFunc(src, func(m string) string {
		if stepErr != nil {
			return m
		}
		chunkID := reAsyncChunk.FindStringSubmatch(m)[1]
		files, ok := lookupChunkFiles(comp, chunk, chunkID)
		if !ok || len(files) == 0 {
			chunkIDNum, _ := strconv.Atoi(chunkID)
			stepErr = errUnresolvableAsyncChunk(mod.Path, chunkIDNum)
			return m
		}
		url := chunk.PublicPath + files[0]
		return fmt.Sprintf("__internalRequire.e(%q)", url)
	})
	if stepErr != nil {
		return "", nil, stepErr
	}

	src = reSyncModule.ReplaceAllStringFunc(src, func(m string) string {
		if stepErr != nil {
			return m
		}
		idStr := reSyncModule.FindStringSubmatch(m)[1]
		id, _ := strconv.Atoi(idStr)
		target, ok := comp.Modules[id]
		if !ok {
			stepErr = errUnknownModule(mod.Path, id)
			return m
		}
		path, err := requirePath(mod, target, opts.ProjectRoot)
		if err != nil {
			stepErr = err
			return m
		}
		deps = append(deps, path)
		return fmt.Sprintf("__internalRequire(%q)", path)
	})
	if stepErr != nil {
		return "", nil, stepErr
	}

	src = rePublicPath.ReplaceAllString(src, strconv.Quote(chunk.PublicPath))
	src = reBareSymbol.ReplaceAllString(src, requireName)

	return src, deps, nil
}

func lookupChunkFiles(comp *Compilation, issuer *Chunk, chunkID string) ([]string, bool) {
	for _, c := range comp.Chunks {
		if c.ID == chunkID {
			return c.Files, true
		}
	}
	return nil, false
}
