// Package pkgprobe walks a filesystem upward from a source file to
// find the package descriptor that owns it, skipping descriptors
// marked private unless they sit at the project root.
package pkgprobe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/oops"
)

const descriptorFile = "package.json"

// Descriptor is the subset of a package descriptor the probe and the
// rewriter's semver-path rule need: identity, declared dependencies,
// and privacy.
type Descriptor struct {
	Dir     string            `json:"-"`
	Name    string            `json:"name"`
	Version string            `json:"version"`
	Private bool              `json:"private"`
	Deps    map[string]string `json:"dependencies"`
}

// Found pairs a descriptor with the directory it was read from.
type Found struct {
	Descriptor
}

// Probe ascends from the directory containing path, returning the
// nearest descriptor that is accepted: not private, or private but
// sitting at root.
func Probe(path string, root string) (Found, error) {
	dir := filepath.Dir(path)
	root = filepath.Clean(root)
	for {
		dir = filepath.Clean(dir)
		desc, err := readDescriptor(dir)
		if err == nil {
			if !desc.Private || dir == root {
				return Found{Descriptor: desc}, nil
			}
		} else if !os.IsNotExist(err) {
			return Found{}, oops.Code("NotInPackage").
				With("dir", dir).
				Wrapf(err, "read package descriptor")
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return Found{}, oops.Code("NotInPackage").
				With("path", path).
				Errorf("no accepting package descriptor found above %s", path)
		}
		dir = parent
	}
}

func readDescriptor(dir string) (Descriptor, error) {
	raw, err := os.ReadFile(filepath.Join(dir, descriptorFile))
	if err != nil {
		return Descriptor{}, err
	}
	var d Descriptor
	if err := json.Unmarshal(raw, &d); err != nil {
		return Descriptor{}, err
	}
	d.Dir = dir
	return d, nil
}

// FileLink is the "file:"-prefixed dependency value pointing at a
// sibling package on disk, e.g. "file:../utils".
func FileLink(depValue string) (string, bool) {
	const prefix = "file:"
	if !strings.HasPrefix(depValue, prefix) {
		return "", false
	}
	return strings.TrimPrefix(depValue, prefix), true
}

// VersionAt reads the version declared by the package descriptor
// rooted at dir, used to resolve a "file:"-linked dependency's actual
// on-disk version.
func VersionAt(dir string) (string, error) {
	desc, err := readDescriptor(dir)
	if err != nil {
		return "", oops.Code("NotInPackage").
			With("dir", dir).
			Wrapf(err, "read linked package descriptor")
	}
	return desc.Version, nil
}
