// Package manifest describes the JSON sidecar the chunk rewriter emits
// next to each rewritten chunk asset, and that the runtime loader's
// host may use to locate a plugin extension's entry point.
package manifest

import (
	"encoding/json"

	"github.com/cespare/xxhash/v2"
)

// Chunk is the per-chunk artifact produced by the rewriter. Entry is
// set iff the chunk is an entry chunk. Modules maps each module's
// define path to the require paths it references, in source order.
type Chunk struct {
	Entry   string              `json:"entry,omitempty"`
	Hash    string              `json:"hash"`
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Files   []string            `json:"files"`
	Modules map[string][]string `json:"modules"`
}

// New builds a Chunk manifest, computing Hash from the final rewritten
// chunk body text so two byte-identical rebuilds are content-addressed
// identically.
func New(id, name string, files []string, modules map[string][]string, body []byte) Chunk {
	return Chunk{
		Hash:    HashBody(body),
		ID:      id,
		Name:    name,
		Files:   files,
		Modules: modules,
	}
}

// HashBody returns the content hash used for Chunk.Hash.
func HashBody(body []byte) string {
	sum := xxhash.Sum64(body)
	return formatHex(sum)
}

func formatHex(v uint64) string {
	const hexDigits = "0123456789abcdef"
	buf := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		buf[i] = hexDigits[v&0xf]
		v >>= 4
	}
	return string(buf)
}

// Marshal encodes the manifest as the bytes written to
// "<chunkAsset>.manifest".
func (c Chunk) Marshal() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Unmarshal decodes manifest bytes. Consumers tolerate additional
// unknown fields per spec §6, which encoding/json does by default.
func Unmarshal(data []byte) (Chunk, error) {
	var c Chunk
	if err := json.Unmarshal(data, &c); err != nil {
		return Chunk{}, err
	}
	return c, nil
}
