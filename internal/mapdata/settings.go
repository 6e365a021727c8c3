package mapdata

import (
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Color is a renderer color. Documents may spell it as a name ("white"), as [r, g, b] or
// as [r, g, b, opacity]; it is kept in the SVG text form.
type Color string

const NoColor Color = "none"

func (c *Color) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*c = Color(name)
		return nil
	}

	var parts []float64
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("color must be a string or an array: %w", err)
	}
	return c.fromParts(parts)
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*c = Color(node.Value)
		return nil
	}

	var parts []float64
	if err := node.Decode(&parts); err != nil {
		return fmt.Errorf("color must be a string or a sequence: %w", err)
	}
	return c.fromParts(parts)
}

func (c *Color) fromParts(parts []float64) error {
	switch len(parts) {
	case 3:
		*c = Color(fmt.Sprintf("rgb(%d,%d,%d)", uint8(parts[0]), uint8(parts[1]), uint8(parts[2])))
	case 4:
		*c = Color(fmt.Sprintf("rgba(%d,%d,%d,%s)", uint8(parts[0]), uint8(parts[1]), uint8(parts[2]),
			strconv.FormatFloat(parts[3], 'f', -1, 64)))
	default:
		return fmt.Errorf("color array must have 3 or 4 components, got %d", len(parts))
	}
	return nil
}

// Offset is a label displacement in pixels.
type Offset [2]float64

// RenderSettings describes the canvas and styling handed to the map renderer.
type RenderSettings struct {
	Width             float64 `json:"width" yaml:"width"`
	Height            float64 `json:"height" yaml:"height"`
	Padding           float64 `json:"padding" yaml:"padding"`
	LineWidth         float64 `json:"line_width" yaml:"line_width"`
	StopRadius        float64 `json:"stop_radius" yaml:"stop_radius"`
	BusLabelFontSize  int     `json:"bus_label_font_size" yaml:"bus_label_font_size"`
	BusLabelOffset    Offset  `json:"bus_label_offset" yaml:"bus_label_offset"`
	StopLabelFontSize int     `json:"stop_label_font_size" yaml:"stop_label_font_size"`
	StopLabelOffset   Offset  `json:"stop_label_offset" yaml:"stop_label_offset"`
	UnderlayerColor   Color   `json:"underlayer_color" yaml:"underlayer_color"`
	UnderlayerWidth   float64 `json:"underlayer_width" yaml:"underlayer_width"`
	ColorPalette      []Color `json:"color_palette" yaml:"color_palette"`
}

func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		Width:             1200,
		Height:            1200,
		Padding:           50,
		LineWidth:         14,
		StopRadius:        5,
		BusLabelFontSize:  20,
		BusLabelOffset:    Offset{7, 15},
		StopLabelFontSize: 20,
		StopLabelOffset:   Offset{7, -3},
		UnderlayerColor:   "rgba(255,255,255,0.85)",
		UnderlayerWidth:   3,
		ColorPalette:      []Color{"green", "rgb(255,160,0)", "red"},
	}
}

// Validate rejects settings the projection cannot work with.
func (s RenderSettings) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("width and height must be positive, got %vx%v", s.Width, s.Height)
	}
	if s.Padding < 0 || 2*s.Padding >= s.Width || 2*s.Padding >= s.Height {
		return fmt.Errorf("padding %v does not fit a %vx%v canvas", s.Padding, s.Width, s.Height)
	}
	return nil
}
