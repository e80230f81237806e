package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// ColourStats is one row of the population panel.
type ColourStats struct {
	Name       string
	Color      rl.Color
	Count      int
	SelfWeight float32 // Attraction of the colour to itself
}

// PopulationData holds the live per-colour breakdown.
type PopulationData struct {
	Colours   []ColourStats
	Total     int
	MeanSpeed float32
	MaxSpeed  float32
}

// PopulationPanel renders particle counts and self-attraction per colour.
type PopulationPanel struct {
	renderer *Renderer
	width    int32
}

// NewPopulationPanel creates a new population panel.
func NewPopulationPanel(width int32) *PopulationPanel {
	return &PopulationPanel{renderer: NewRenderer(), width: width}
}

// Height returns the panel height for n colours.
func (p *PopulationPanel) Height(colours int) int32 {
	th := p.renderer.Theme
	return th.Padding*2 + th.LineHeight*4 + int32(colours)*(th.LineHeight*2+2)
}

// Draw renders the panel with its top-left corner at (x, y).
func (p *PopulationPanel) Draw(x, y int32, data PopulationData) {
	r := p.renderer
	th := r.Theme
	r.DrawPanel(x, y, p.width, p.Height(len(data.Colours)))

	x += th.Padding
	y += th.Padding
	inner := p.width - th.Padding*2

	y = r.DrawSectionHeader(x, y, "Population")
	y = r.DrawLabelValue(x, y, "Particles", fmt.Sprintf("%d", data.Total))
	y = r.DrawLabelValue(x, y, "Speed", fmt.Sprintf("%.1f / %.0f", data.MeanSpeed, data.MaxSpeed))
	y += th.LineHeight / 2

	for _, c := range data.Colours {
		share := 0.0
		if data.Total > 0 {
			share = 100 * float64(c.Count) / float64(data.Total)
		}
		y = r.DrawColorSwatch(x, y, fmt.Sprintf("%s %d (%.0f%%)", c.Name, c.Count, share), c.Color)
		y = r.DrawCenteredBar(x, y, "Self", c.SelfWeight, 1, inner)
	}
}
