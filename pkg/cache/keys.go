package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Key kinds, the segment before the hash in every key.
const (
	KindLayout   = "layout"
	KindArtifact = "artifact"
)

// Keyer builds cache keys.
type Keyer interface {
	// LayoutKey is the key of a layout computed from an input document.
	LayoutKey(inputHash string, opts LayoutKeyOpts) string

	// ArtifactKey is the key of a rendered debug view of an input document.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts are the settings a layout depends on besides its input.
type LayoutKeyOpts struct {
	// ParamsHash is the hash of the encoded layout parameters.
	ParamsHash string `json:"params"`
	Strategy   string `json:"strategy"`
}

// ArtifactKeyOpts are the settings of a rendered view. A view shows cell
// orders, directions and shapes, so it depends on the layout settings too.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Panel  string `json:"panel,omitempty"`

	// ParamsHash is the hash of the encoded layout parameters.
	ParamsHash string `json:"params"`
	Strategy   string `json:"strategy"`
}

// DefaultKeyer hashes the options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:" followed by a hash of the input hash and options.
func (DefaultKeyer) LayoutKey(inputHash string, opts LayoutKeyOpts) string {
	return hashKey(KindLayout, inputHash, opts)
}

// ArtifactKey returns "artifact:" followed by a hash of the input hash and options.
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey(KindArtifact, inputHash, opts)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashJSON returns the hash of the JSON encoding of v. Values that cannot
// be encoded hash as an empty document.
func HashJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		data = nil
	}
	return Hash(data)
}

// hashKey is kind, a colon and the hash of the input hash with the
// encoded options. The NUL separator keeps the two parts apart.
func hashKey(kind, inputHash string, opts any) string {
	h := sha256.New()
	h.Write([]byte(inputHash))
	h.Write([]byte{0})
	_ = json.NewEncoder(h).Encode(opts)
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}
