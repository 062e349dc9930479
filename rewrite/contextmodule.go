package rewrite

import (
	"fmt"
	"sort"
	"strings"
)

// synthesizeContext builds a directory-glob require module's body
// from scratch (spec §4.3 "Context modules"): a sorted mapping from
// original request to semver path, plus a fixed wrapper exposing
// keys(), resolve(req), and a call form.
func synthesizeContext(mod *Module, comp *Compilation, opts Options, requireName string) (string, error) {
	reqs := make([]string, 0, len(mod.Context.Requests))
	for req := range mod.Context.Requests {
		reqs = append(reqs, req)
	}
	sort.Strings(reqs)

	var b strings.Builder
	b.WriteString("var map = {\n")
	for i, req := range reqs {
		targetID := mod.Context.Requests[req]
		target, ok := comp.Modules[targetID]
		if !ok {
			return "", errUnknownModule(mod.Path, targetID)
		}
		path, err := requirePath(mod, target, opts.ProjectRoot)
		if err != nil {
			return "", err
		}
		sep := ","
		if i == len(reqs)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  %q: %q%s\n", req, path, sep)
	}
	b.WriteString("};\n")
	ctx := opts.name() + "Context"
	fmt.Fprintf(&b, "function %sResolve(req) {\n", ctx)
	b.WriteString("  if (!(req in map)) {\n")
	b.WriteString("    var e = new Error(\"Cannot find module '\" + req + \"'\");\n")
	b.WriteString("    e.code = 'MODULE_NOT_FOUND';\n")
	b.WriteString("    throw e;\n")
	b.WriteString("  }\n")
	b.WriteString("  return map[req];\n")
	b.WriteString("}\n")
	fmt.Fprintf(&b, "function %s(req) {\n", ctx)
	fmt.Fprintf(&b, "  return %s(%sResolve(req));\n", requireName, ctx)
	b.WriteString("}\n")
	fmt.Fprintf(&b, "%s.keys = function() { return Object.keys(map); };\n", ctx)
	fmt.Fprintf(&b, "%s.resolve = %sResolve;\n", ctx, ctx)
	fmt.Fprintf(&b, "module.exports = %s;\n", ctx)
	return b.String(), nil
}
