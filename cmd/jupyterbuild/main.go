// Command jupyterbuild is a demo CLI/server exercising the rewriter
// and runtime loader end to end: it rewrites a small hand-built
// two-package compilation, then serves the resulting chunk, its
// manifest, and a bootstrap page over HTTP.
//
// It stands in for the teacher's cjse demo (package main, cjse/cjse.go):
// the teacher served a single CommonJS bundle directly off disk; this
// demo shows the versioned-path rewrite and ensureBundle dedup this
// module actually implements, since driving a real bundler is out of
// scope (spec §1).
package main

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/daaku/go.h"
	"github.com/spf13/cobra"

	"github.com/jupyter/extension-builder/jsh"
	"github.com/jupyter/extension-builder/jslib"
	"github.com/jupyter/extension-builder/rewrite"
	"github.com/jupyter/extension-builder/runtimejs"
)

var (
	addr       string
	publicPath string
	name       string
	minify     bool

	logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false, Prefix: "jupyterbuild"})
)

func main() {
	root := &cobra.Command{
		Use:   "jupyterbuild",
		Short: "Demo server for the version-aware module rewriter and runtime loader",
	}
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Rewrite a sample extension and serve it for inspection in a browser",
		RunE:  runServe,
	}
	flags := serve.Flags()
	flags.StringVar(&addr, "addr", ":8080", "address to listen on")
	flags.StringVar(&publicPath, "public-path", "/r/", "public path chunk assets are served under")
	flags.StringVar(&name, "name", "jupyter", "global identifier chunks and the runtime prelude install themselves under")
	flags.BoolVar(&minify, "minify", false, "minify the rewritten chunk and runtime prelude")

	root.AddCommand(serve)
	if err := root.Execute(); err != nil {
		logger.Fatal("command failed", "error", err)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	comp, root, err := sampleCompilation()
	if err != nil {
		return err
	}
	defer os.RemoveAll(root)

	opts := rewrite.Options{Name: name, ProjectRoot: root}
	if minify {
		opts.Minify = rewrite.JSMin
	}
	outputs, err := rewrite.Rewrite(comp, opts)
	if err != nil {
		return err
	}
	chunk := outputs[0]

	preludeOpts := runtimejs.Options{Name: name, Minify: minify}
	prelude, err := runtimejs.Render(preludeOpts)
	if err != nil {
		return err
	}

	chunkURL := publicPath + chunk.AssetName
	manifestURL := chunkURL + ".manifest"

	http.HandleFunc(chunkURL, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/javascript")
		w.Write(chunk.Body)
	})
	http.HandleFunc(manifestURL, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chunk.Manifest)
	})
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		bootstrap := &jsh.Bootstrap{
			Name:     name,
			Prelude:  prelude,
			Manifest: chunk.Manifest,
			ChunkURL: chunkURL,
			Shared:   []string{jslib.JQuery_1_8_2.URL},
			Calls: []jsh.Call{
				{RequirePath: "utils@^1.0.0/index.js", Function: "log", Args: []interface{}{"demo-log", "hello from the demo extension"}},
			},
		}
		h.Write(w, &h.Document{
			Inner: &h.Frag{
				&h.Head{
					Inner: &h.Frag{
						&h.Meta{Charset: "utf-8"},
						&h.Title{h.String("jupyterbuild demo")},
					},
				},
				&h.Body{
					Inner: &h.Frag{
						&h.H1{ID: "demo-log"},
						bootstrap,
					},
				},
			},
		})
	})

	logger.Info("serving demo extension", "addr", addr, "chunk", chunkURL, "manifest", manifestURL)
	return http.ListenAndServe(addr, nil)
}
