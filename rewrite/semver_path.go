package rewrite

import (
	"path/filepath"

	"github.com/jupyter/extension-builder/pkgprobe"
	"github.com/jupyter/extension-builder/vpath"
)

// subpath returns the "/"-prefixed path of modPath relative to the
// owning package's directory, in canonical forward-slash form.
func subpath(desc pkgprobe.Descriptor, modPath string) (string, error) {
	rel, err := filepath.Rel(desc.Dir, modPath)
	if err != nil {
		return "", err
	}
	return "/" + filepath.ToSlash(rel), nil
}

// definePath computes a module's own home address: pkg@exactVersion/subpath.
func definePath(mod *Module, projectRoot string) (string, error) {
	desc, err := pkgprobe.Probe(mod.Path, projectRoot)
	if err != nil {
		return "", err
	}
	sub, err := subpath(desc.Descriptor, mod.Path)
	if err != nil {
		return "", err
	}
	return vpath.Path{Pkg: desc.Name, Version: desc.Version, Sub: sub}.String(), nil
}

// requirePath computes the range-addressed path a require site inside
// issuer should use to reach target, applying the two overrides in
// spec §4.2: same-package self-reference, and "file:"-linked
// dependencies.
func requirePath(issuer, target *Module, projectRoot string) (string, error) {
	issuerDesc, err := pkgprobe.Probe(issuer.Path, projectRoot)
	if err != nil {
		return "", err
	}
	targetDesc, err := pkgprobe.Probe(target.Path, projectRoot)
	if err != nil {
		return "", err
	}

	rng, err := resolveRange(issuerDesc.Descriptor, targetDesc.Descriptor)
	if err != nil {
		return "", err
	}

	sub, err := subpath(targetDesc.Descriptor, target.Path)
	if err != nil {
		return "", err
	}
	return vpath.Path{Pkg: targetDesc.Name, Version: rng, Sub: sub}.String(), nil
}

func resolveRange(issuer, target pkgprobe.Descriptor) (string, error) {
	// Self-reference: widen to patch upgrades of the issuer's own
	// exact version, regardless of any declared range. See
	// DESIGN.md for the widening-is-unconditional open question.
	if issuer.Name == target.Name {
		return "~" + issuer.Version, nil
	}

	declared, ok := issuer.Deps[target.Name]
	if !ok {
		// Not declared in the issuer's dependency list: fall back to
		// accepting any version rather than failing the build, since
		// the spec does not define a dedicated error kind for this.
		return "*", nil
	}
	if linkDir, isLink := pkgprobe.FileLink(declared); isLink {
		if !filepath.IsAbs(linkDir) {
			linkDir = filepath.Join(issuer.Dir, linkDir)
		}
		version, err := pkgprobe.VersionAt(linkDir)
		if err != nil {
			return "", err
		}
		return "~" + version, nil
	}
	return declared, nil
}
