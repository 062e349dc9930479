package main

import (
	"os"
	"path/filepath"

	"github.com/jupyter/extension-builder/rewrite"
)

// sampleCompilation hand-builds a tiny two-package compilation on
// disk: an entry module "demo" requiring "utils" by its declared
// range. Standing in for what a real bundler's compilation-emit hook
// would hand the rewriter (spec §1's explicit Non-goal: driving the
// bundler itself is out of scope).
func sampleCompilation() (*rewrite.Compilation, string, error) {
	root, err := os.MkdirTemp("", "jupyterbuild-demo-")
	if err != nil {
		return nil, "", err
	}

	demoDir := filepath.Join(root, "demo")
	utilsDir := filepath.Join(root, "utils")
	if err := writeDescriptor(demoDir, `{"name":"demo","version":"1.0.0","dependencies":{"utils":"^1.0.0"}}`); err != nil {
		return nil, root, err
	}
	if err := writeDescriptor(utilsDir, `{"name":"utils","version":"1.2.0"}`); err != nil {
		return nil, root, err
	}

	entryPath := filepath.Join(demoDir, "index.js")
	utilsPath := filepath.Join(utilsDir, "index.js")
	entrySrc := `
var utils = __internalRequire(2);
module.exports = [{
  id: 'demo-extension',
  activate: function(app) { utils.log('demo-log', 'hello from the demo extension'); }
}];
`
	utilsSrc := `
exports.log = function(id, message) {
  document.getElementById(id).textContent = message;
};
`
	if err := os.WriteFile(entryPath, []byte(entrySrc), 0o644); err != nil {
		return nil, root, err
	}
	if err := os.WriteFile(utilsPath, []byte(utilsSrc), 0o644); err != nil {
		return nil, root, err
	}

	comp := &rewrite.Compilation{
		Modules: map[int]*rewrite.Module{
			1: {ID: 1, Path: entryPath, Source: []byte(entrySrc)},
			2: {ID: 2, Path: utilsPath, Source: []byte(utilsSrc)},
		},
		Chunks: []*rewrite.Chunk{
			{
				ID:         "main",
				Name:       "main",
				Entry:      true,
				PublicPath: "/r/",
				Files:      []string{"main.js"},
				ModuleIDs:  []int{1, 2},
			},
		},
	}
	return comp, root, nil
}

func writeDescriptor(dir, content string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0o644)
}
