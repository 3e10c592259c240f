// Package params holds the layout parameters shared by every layout stage.
//
// [Parameters] is a plain value: stages receive it by value and never modify
// it. Start from [Default], override fields, then call [Parameters.Validate]
// before handing the value to the pipeline. [Load] overlays a TOML or YAML
// file on top of the defaults.
package params

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/sldlayout/pkg/errors"
)

// Position resolver strategies.
const (
	StrategyClustering = "clustering"
	StrategyFree       = "free"
)

// Padding is the empty margin kept around a voltage-level panel.
type Padding struct {
	Top    float64 `toml:"top" yaml:"top" json:"top" validate:"gte=0"`
	Bottom float64 `toml:"bottom" yaml:"bottom" json:"bottom" validate:"gte=0"`
	Left   float64 `toml:"left" yaml:"left" json:"left" validate:"gte=0"`
	Right  float64 `toml:"right" yaml:"right" json:"right" validate:"gte=0"`
}

// Parameters configures the layout. All lengths are in drawing units.
type Parameters struct {
	// CellWidth is the width of one structural column (two half-units).
	CellWidth float64 `toml:"cell_width" yaml:"cell_width" json:"cell_width" validate:"gt=0"`
	// ExternCellHeight is the distance between the outer busbar row and the
	// feeder line.
	ExternCellHeight float64 `toml:"extern_cell_height" yaml:"extern_cell_height" json:"extern_cell_height" validate:"gt=0"`
	// InternCellHeight is the height of one intern-cell level above the busbars.
	InternCellHeight float64 `toml:"intern_cell_height" yaml:"intern_cell_height" json:"intern_cell_height" validate:"gt=0"`
	// StackHeight is the room kept next to the busbars for leg switches.
	StackHeight float64 `toml:"stack_height" yaml:"stack_height" json:"stack_height" validate:"gte=0"`
	// FeederSpan is the room kept next to the feeder line for feeder switches.
	FeederSpan float64 `toml:"feeder_span" yaml:"feeder_span" json:"feeder_span" validate:"gte=0"`
	// VerticalSpaceBus is the distance between two busbar rows.
	VerticalSpaceBus float64 `toml:"vertical_space_bus" yaml:"vertical_space_bus" json:"vertical_space_bus" validate:"gt=0"`
	// HorizontalBusPadding is cut from the right end of every busbar.
	HorizontalBusPadding float64 `toml:"horizontal_bus_padding" yaml:"horizontal_bus_padding" json:"horizontal_bus_padding" validate:"gte=0"`

	HorizontalSnakeLinePadding float64 `toml:"horizontal_snake_line_padding" yaml:"horizontal_snake_line_padding" json:"horizontal_snake_line_padding" validate:"gt=0"`
	VerticalSnakeLinePadding   float64 `toml:"vertical_snake_line_padding" yaml:"vertical_snake_line_padding" json:"vertical_snake_line_padding" validate:"gt=0"`

	VoltageLevelPadding Padding `toml:"voltage_level_padding" yaml:"voltage_level_padding" json:"voltage_level_padding"`
	// PanelSpacing is the base gap between two stacked panels.
	PanelSpacing float64 `toml:"panel_spacing" yaml:"panel_spacing" json:"panel_spacing" validate:"gte=0"`

	// Content-adapted extern cell heights.
	MaxComponentHeight        float64 `toml:"max_component_height" yaml:"max_component_height" json:"max_component_height" validate:"gt=0"`
	MinSpaceBetweenComponents float64 `toml:"min_space_between_components" yaml:"min_space_between_components" json:"min_space_between_components" validate:"gte=0"`
	MinExternCellHeight       float64 `toml:"min_extern_cell_height" yaml:"min_extern_cell_height" json:"min_extern_cell_height" validate:"gte=0"`
	AdaptCellHeightToContent  bool    `toml:"adapt_cell_height_to_content" yaml:"adapt_cell_height_to_content" json:"adapt_cell_height_to_content"`

	HandleShunts                 bool `toml:"handle_shunts" yaml:"handle_shunts" json:"handle_shunts"`
	Stack                        bool `toml:"stack" yaml:"stack" json:"stack"`
	FeederStacked                bool `toml:"feeder_stacked" yaml:"feeder_stacked" json:"feeder_stacked"`
	ExceptionIfPatternNotHandled bool `toml:"exception_if_pattern_not_handled" yaml:"exception_if_pattern_not_handled" json:"exception_if_pattern_not_handled"`

	PositionStrategy string `toml:"position_strategy" yaml:"position_strategy" json:"position_strategy" validate:"oneof=clustering free"`
}

// Default returns the default parameters.
func Default() Parameters {
	return Parameters{
		CellWidth:                  50,
		ExternCellHeight:           250,
		InternCellHeight:           40,
		StackHeight:                30,
		FeederSpan:                 20,
		VerticalSpaceBus:           25,
		HorizontalBusPadding:       20,
		HorizontalSnakeLinePadding: 20,
		VerticalSnakeLinePadding:   25,
		VoltageLevelPadding:        Padding{Top: 20, Bottom: 20, Left: 20, Right: 20},
		PanelSpacing:               40,
		MaxComponentHeight:         12,
		MinSpaceBetweenComponents:  15,
		MinExternCellHeight:        80,
		Stack:                      true,
		PositionStrategy:           StrategyClustering,
	}
}

var validate = validator.New()

// Validate checks the struct constraints and the cross-field rules.
func (p Parameters) Validate() error {
	if err := validate.Struct(p); err != nil {
		return formatValidationError(err)
	}
	if p.StackHeight+p.FeederSpan >= p.ExternCellHeight {
		return errors.New(errors.ErrCodeInvalidInput,
			"stack_height + feeder_span (%g) must be below extern_cell_height (%g)",
			p.StackHeight+p.FeederSpan, p.ExternCellHeight)
	}
	return nil
}

// formatValidationError converts validator errors to a coded error naming
// the first offending field.
func formatValidationError(err error) error {
	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok || len(validationErrs) == 0 {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid parameters")
	}

	e := validationErrs[0]
	field := strings.TrimPrefix(e.Namespace(), "Parameters.")
	switch e.Tag() {
	case "gt":
		return errors.New(errors.ErrCodeInvalidInput, "%s: must be greater than %s", field, e.Param())
	case "gte":
		return errors.New(errors.ErrCodeInvalidInput, "%s: must be at least %s", field, e.Param())
	case "oneof":
		return errors.New(errors.ErrCodeInvalidInput, "%s: must be one of [%s], got %q", field, e.Param(), fmt.Sprint(e.Value()))
	default:
		return errors.New(errors.ErrCodeInvalidInput, "%s: validation failed (%s)", field, e.Tag())
	}
}
