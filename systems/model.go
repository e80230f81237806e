package systems

import "math/rand"

// Colour identifies a particle species. It indexes the interaction matrix.
type Colour uint8

// Particle colours. The active subset is the first Model.Colours() values.
const (
	Red Colour = iota
	Green
	Blue
	Orange
	Pink
	Aqua

	MaxColours = 6
)

var colourNames = [MaxColours]string{"Red", "Green", "Blue", "Orange", "Pink", "Aqua"}

// String returns the colour name.
func (c Colour) String() string {
	if int(c) < MaxColours {
		return colourNames[c]
	}
	return "Unknown"
}

// Model is the directional colour interaction matrix. Weight(a, b) is how
// strongly a is pulled towards (positive) or pushed from (negative) b and
// need not equal Weight(b, a).
type Model struct {
	weights [MaxColours][MaxColours]float32
	colours int
}

// NewModel returns a zeroed model with the given number of active colours.
func NewModel(colours int) *Model {
	m := &Model{}
	m.SetColours(colours)
	return m
}

// Colours returns the active colour count.
func (m *Model) Colours() int { return m.colours }

// SetColours changes the active colour count, clamped to [1, MaxColours].
// Existing weights are kept.
func (m *Model) SetColours(n int) {
	m.colours = min(max(n, 1), MaxColours)
}

// Weight returns the interaction weight of source towards target.
// Indices outside the active set are a caller bug; they read as neutral.
func (m *Model) Weight(source, target Colour) float32 {
	if int(source) >= m.colours || int(target) >= m.colours {
		return 0
	}
	return m.weights[source][target]
}

// SetWeight stores a weight clamped to [-1, 1]. It reports false and leaves
// the model untouched for inactive colours.
func (m *Model) SetWeight(source, target Colour, w float32) bool {
	if int(source) >= m.colours || int(target) >= m.colours {
		return false
	}
	if w != w { // NaN
		w = 0
	}
	m.weights[source][target] = clampFloat(w, -1, 1)
	return true
}

// Randomise assigns a uniform value in [-1, 1] to every active entry.
func (m *Model) Randomise(rng *rand.Rand) {
	for i := 0; i < m.colours; i++ {
		for j := 0; j < m.colours; j++ {
			m.weights[i][j] = rng.Float32()*2 - 1
		}
	}
}

// Load replaces the matrix from rows. The colour count becomes len(rows),
// at least one; short or missing rows leave entries at zero.
func (m *Model) Load(rows [][]float32) {
	m.weights = [MaxColours][MaxColours]float32{}
	m.SetColours(len(rows))
	for i := 0; i < m.colours && i < len(rows); i++ {
		for j := 0; j < m.colours && j < len(rows[i]); j++ {
			m.SetWeight(Colour(i), Colour(j), rows[i][j])
		}
	}
}

// Rows returns a copy of the active matrix.
func (m *Model) Rows() [][]float32 {
	rows := make([][]float32, m.colours)
	for i := range rows {
		rows[i] = make([]float32, m.colours)
		copy(rows[i], m.weights[i][:m.colours])
	}
	return rows
}
