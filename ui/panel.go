package ui

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/particlelife/systems"
)

// Slider ranges.
const (
	maxFriction      = 10
	maxForceStrength = 500
	maxRadius        = 200
	maxDecayRate     = 1000
	maxMaxSpeed      = 1000
	weightStep       = 0.1
)

// PanelState is what the control panel displays.
type PanelState struct {
	Params  systems.Params
	Weights [][]float32 // Active C×C rows
	Palette []rl.Color  // One per active colour
	Preset  string
}

// WeightEdit is a requested change to one matrix entry.
type WeightEdit struct {
	Source, Target systems.Colour
	Value          float32
}

// PanelActions are the user requests from one frame of the panel.
type PanelActions struct {
	Params        systems.Params
	ParamsChanged bool

	PrevPreset   bool
	NextPreset   bool
	Randomise    bool
	Respawn      bool
	ColoursDelta int

	Weight *WeightEdit
}

// ControlPanel renders the parameter sliders, preset buttons and the
// interaction matrix.
type ControlPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewControlPanel creates a new control panel.
func NewControlPanel(x, y, width int32) *ControlPanel {
	return &ControlPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// Contains reports whether a screen point is over the panel, so clicks
// there are not also handled by the world.
func (c *ControlPanel) Contains(p rl.Vector2, height int32) bool {
	return rl.CheckCollisionPointRec(p, rl.Rectangle{
		X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(height),
	})
}

// Height returns the panel height for n active colours.
func (c *ControlPanel) Height(colours int) int32 {
	th := c.renderer.Theme
	return th.Padding*2 + 7*34 + 3*28 + th.LineHeight*2 + int32(colours+1)*c.cellSize(colours) + 8
}

// cellSize returns the matrix cell size that fits the panel width.
func (c *ControlPanel) cellSize(colours int) int32 {
	avail := c.width - c.renderer.Theme.Padding*2
	return min(avail/int32(colours+1), 32)
}

// Draw renders the panel and returns what the user asked for this frame.
func (c *ControlPanel) Draw(state PanelState) PanelActions {
	r := c.renderer
	th := r.Theme
	colours := len(state.Weights)

	r.DrawPanel(c.x, c.y, c.width, c.Height(colours))

	x := float32(c.x + th.Padding)
	y := float32(c.y + th.Padding)
	w := float32(c.width - th.Padding*2)

	actions := PanelActions{Params: state.Params}
	p := &actions.Params

	slider := func(label string, value *float32, maxVal float32, format string) {
		rl.DrawText(fmt.Sprintf("%s "+format, label, *value), int32(x), int32(y), th.FontSize, th.LabelColor)
		y += 14
		v := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: w, Height: 14}, "", "", *value, 0, maxVal)
		if v != *value {
			*value = v
			actions.ParamsChanged = true
		}
		y += 20
	}

	slider("Friction", &p.Friction, maxFriction, "%.2f")
	slider("Force", &p.ForceStrength, maxForceStrength, "%.0f")
	slider("Repulsion r", &p.RepulsionRadius, maxRadius, "%.0f")
	slider("Peak r", &p.PeakAttractionRadius, maxRadius, "%.0f")
	slider("Cutoff r", &p.AttractionRadius, maxRadius, "%.0f")
	slider("Decay /s", &p.DecayRate, maxDecayRate, "%.0f")
	slider("Max speed", &p.MaxSpeed, maxMaxSpeed, "%.0f")

	half := (w - 6) / 2
	button := func(col int, label string) bool {
		return gui.Button(rl.Rectangle{X: x + float32(col)*(half+6), Y: y, Width: half, Height: 22}, label)
	}

	actions.PrevPreset = button(0, "< Preset")
	actions.NextPreset = button(1, "Preset >")
	y += 28
	actions.Randomise = button(0, "Randomise")
	actions.Respawn = button(1, "Respawn")
	y += 28
	if button(0, "Colours -") {
		actions.ColoursDelta--
	}
	if button(1, "Colours +") {
		actions.ColoursDelta++
	}
	y += 28

	rl.DrawText(fmt.Sprintf("Preset: %s", state.Preset), int32(x), int32(y), th.FontSize, th.ValueColor)
	y += float32(th.LineHeight)
	rl.DrawText("Matrix (L/R click: +/-)", int32(x), int32(y), th.FontSize, th.SectionHeader)
	y += float32(th.LineHeight)

	actions.Weight = c.drawMatrix(int32(x), int32(y), state)
	return actions
}

// drawMatrix draws the weight grid: row = source colour, column = target.
// Clicking a cell nudges its weight.
func (c *ControlPanel) drawMatrix(x, y int32, state PanelState) *WeightEdit {
	th := c.renderer.Theme
	colours := len(state.Weights)
	cell := c.cellSize(colours)
	mouse := rl.GetMousePosition()

	swatch := func(i int) rl.Color {
		if i < len(state.Palette) {
			return state.Palette[i]
		}
		return rl.Gray
	}

	for i := 0; i < colours; i++ {
		rl.DrawRectangle(x+int32(i+1)*cell+cell/4, y+cell/4, cell/2, cell/2, swatch(i))
		rl.DrawRectangle(x+cell/4, y+int32(i+1)*cell+cell/4, cell/2, cell/2, swatch(i))
	}

	var edit *WeightEdit
	for i, row := range state.Weights {
		for j, wgt := range row {
			rect := rl.Rectangle{
				X:      float32(x + int32(j+1)*cell),
				Y:      float32(y + int32(i+1)*cell),
				Width:  float32(cell - 1),
				Height: float32(cell - 1),
			}
			rl.DrawRectangleRec(rect, th.WeightColor(wgt))

			if !rl.CheckCollisionPointRec(mouse, rect) {
				continue
			}
			rl.DrawRectangleLinesEx(rect, 1, rl.White)
			rl.DrawText(fmt.Sprintf("%+.1f", wgt), int32(rect.X)+2, int32(rect.Y)+2, 10, rl.White)

			delta := float32(0)
			if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
				delta = weightStep
			} else if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
				delta = -weightStep
			}
			if delta != 0 {
				edit = &WeightEdit{
					Source: systems.Colour(i),
					Target: systems.Colour(j),
					Value:  min(max(wgt+delta, -1), 1),
				}
			}
		}
	}
	return edit
}
