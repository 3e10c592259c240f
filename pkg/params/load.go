package params

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/sldlayout/pkg/errors"
)

// Load reads a parameter file and overlays it on [Default]. The format is
// chosen from the extension: .toml, .yaml or .yml. The result is validated.
func Load(path string) (Parameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Parameters{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "parameter file %s", path)
		}
		return Parameters{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
	}
	return Decode(data, strings.TrimPrefix(filepath.Ext(path), "."))
}

// Decode overlays the encoded parameters on [Default] and validates the result.
func Decode(data []byte, format string) (Parameters, error) {
	p := Default()
	switch strings.ToLower(format) {
	case "toml":
		if _, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
			return Parameters{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode toml parameters")
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return Parameters{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode yaml parameters")
		}
	default:
		return Parameters{}, errors.New(errors.ErrCodeUnsupported, "unsupported parameter format %q", format)
	}
	if err := p.Validate(); err != nil {
		return Parameters{}, err
	}
	return p, nil
}

// EncodeTOML writes p as TOML, the format `sldlayout params` prints.
func EncodeTOML(p Parameters) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(p); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode parameters")
	}
	return buf.Bytes(), nil
}
