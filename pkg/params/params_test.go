package params

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/sldlayout/pkg/errors"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v, want nil", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Parameters)
		wantErr string
	}{
		{"zero cell width", func(p *Parameters) { p.CellWidth = 0 }, "CellWidth"},
		{"negative padding", func(p *Parameters) { p.VoltageLevelPadding.Left = -1 }, "VoltageLevelPadding.Left"},
		{"unknown strategy", func(p *Parameters) { p.PositionStrategy = "force" }, "PositionStrategy"},
		{"stack exceeds cell", func(p *Parameters) { p.StackHeight = 240 }, "stack_height"},
		{"free strategy", func(p *Parameters) { p.PositionStrategy = StrategyFree }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Default()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error mentioning %q", tt.wantErr)
			}
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("GetCode() = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidInput)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeOverlaysDefaults(t *testing.T) {
	tests := []struct {
		format string
		data   string
	}{
		{"toml", "cell_width = 80\nhandle_shunts = true\n[voltage_level_padding]\ntop = 5\n"},
		{"yaml", "cell_width: 80\nhandle_shunts: true\nvoltage_level_padding:\n  top: 5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			p, err := Decode([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if p.CellWidth != 80 {
				t.Errorf("CellWidth = %v, want 80", p.CellWidth)
			}
			if !p.HandleShunts {
				t.Error("HandleShunts = false, want true")
			}
			if p.VoltageLevelPadding.Top != 5 {
				t.Errorf("VoltageLevelPadding.Top = %v, want 5", p.VoltageLevelPadding.Top)
			}
			if p.VoltageLevelPadding.Left != 20 {
				t.Errorf("VoltageLevelPadding.Left = %v, want default 20", p.VoltageLevelPadding.Left)
			}
			if p.ExternCellHeight != 250 {
				t.Errorf("ExternCellHeight = %v, want default 250", p.ExternCellHeight)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode([]byte("{}"), "json"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("Decode(json) error = %v, want %v", err, errors.ErrCodeUnsupported)
	}
	if _, err := Decode([]byte("cell_width = "), "toml"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Decode(bad toml) error = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
	if _, err := Decode([]byte("cell_width: -3\n"), "yaml"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Decode(negative width) error = %v, want %v", err, errors.ErrCodeInvalidInput)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.yml")
	if err := os.WriteFile(path, []byte("position_strategy: free\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.PositionStrategy != StrategyFree {
		t.Errorf("PositionStrategy = %q, want %q", p.PositionStrategy, StrategyFree)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want %v", err, errors.ErrCodeFileNotFound)
	}
}

func TestEncodeTOMLRoundTrip(t *testing.T) {
	want := Default()
	want.HandleShunts = true
	data, err := EncodeTOML(want)
	if err != nil {
		t.Fatalf("EncodeTOML() error = %v", err)
	}
	got, err := Decode(data, "toml")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got != want {
		t.Errorf("Decode(EncodeTOML(p)) = %+v, want %+v", got, want)
	}
}
