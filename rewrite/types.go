package rewrite

// Module is one bundler-emitted module, as seen by the rewriter's
// compilation-emit hook. Path is the absolute source file path used
// to run the package probe; Source is the bundler's finished,
// numeric-id-addressed body for this module, before rewriting.
type Module struct {
	ID       int
	Path     string
	Source   []byte
	External bool
	Context  *ContextSpec
}

// ContextSpec marks a module as a directory-glob require (webpack's
// "context module"): instead of rewriting Source, the rewriter
// synthesizes a fresh body from Requests.
type ContextSpec struct {
	// Requests maps each original request string (e.g. "./a") to the
	// numeric id of the module it resolves to.
	Requests map[string]int
}

// Chunk is one bundler output asset and the modules concatenated into
// it, in emission order.
type Chunk struct {
	ID         string
	Name       string
	Entry      bool
	PublicPath string
	// Files lists this chunk's own asset file names (for the
	// manifest); the first is used as the async-load target when
	// another chunk references this one.
	Files     []string
	ModuleIDs []int
}

// Compilation is the finished, numeric-id-addressed bundler output the
// rewriter post-processes. Modules is global across all chunks: an
// async or cross-chunk reference looks a target module up here
// regardless of which chunk physically contains it.
type Compilation struct {
	Modules map[int]*Module
	Chunks  []*Chunk
}

// Transform optionally post-processes a chunk's final concatenated
// body, e.g. to minify it.
type Transform interface {
	Transform(content []byte) ([]byte, error)
}

// Options configures a single Rewrite call.
type Options struct {
	// Name controls the define()-call receiver, the synthesized
	// context-module identifier, and the internal require symbol
	// ("__<Name>_require__"). Defaults to "jupyter".
	Name string

	// ProjectRoot bounds the package probe's private-root exception
	// (spec §4.2): a private descriptor is accepted if its directory
	// equals ProjectRoot.
	ProjectRoot string

	// Minify, if set, post-processes each chunk's concatenated body.
	Minify Transform
}

func (o Options) name() string {
	if o.Name == "" {
		return "jupyter"
	}
	return o.Name
}

func (o Options) requireSymbol() string {
	return "__" + o.name() + "_require__"
}
