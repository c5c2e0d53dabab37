// Terrain generation using layered simplex noise.
// Elevation becomes the Z coordinate of every point; interest points are
// placed on the highest sampled cells (lookouts creatures patrol between) and
// shelters on the lowest (sheltered hollows).
package world

import (
	"math"
	"math/rand"
	"sort"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds terrain generation parameters.
type GenConfig struct {
	Size           float64 // Side length of the square world
	Seed           int64   // Random seed (0 = random)
	InterestPoints int     // Patrol waypoints to place
	Shelters       int     // Shelter sites to place
	NoiseScale     float64 // Feature size of the elevation field
	MaxElevation   float64 // Peak height in world units
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Size:           200,
		Seed:           0,
		InterestPoints: 12,
		Shelters:       3,
		NoiseScale:     40,
		MaxElevation:   10,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Size:           40,
		Seed:           42,
		InterestPoints: 4,
		Shelters:       1,
		NoiseScale:     10,
		MaxElevation:   2,
	}
}

// Terrain is the generated world surface.
type Terrain struct {
	Size           float64 `json:"size"`
	Seed           int64   `json:"seed"`
	InterestPoints []Vec3  `json:"interest_points"`
	Shelters       []Vec3  `json:"shelters"`

	noise        opensimplex.Noise
	scale        float64
	maxElevation float64
}

// Generate creates a terrain with interest points and shelters.
func Generate(cfg GenConfig) *Terrain {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}
	scale := cfg.NoiseScale
	if scale <= 0 {
		scale = 1
	}

	t := &Terrain{
		Size:         cfg.Size,
		Seed:         seed,
		noise:        opensimplex.NewNormalized(seed),
		scale:        scale,
		maxElevation: cfg.MaxElevation,
	}

	// Sample a coarse grid and rank cells by elevation.
	type cell struct {
		pos  Vec3
		elev float64
	}
	const grid = 16
	step := cfg.Size / grid
	cells := make([]cell, 0, grid*grid)
	for i := 0; i < grid; i++ {
		for j := 0; j < grid; j++ {
			x := (float64(i) + 0.5) * step
			y := (float64(j) + 0.5) * step
			e := t.elevation(x, y)
			cells = append(cells, cell{pos: Vec3{X: x, Y: y, Z: e * t.maxElevation}, elev: e})
		}
	}
	sort.SliceStable(cells, func(a, b int) bool { return cells[a].elev > cells[b].elev })

	n := min(cfg.InterestPoints, len(cells))
	for _, c := range cells[:n] {
		t.InterestPoints = append(t.InterestPoints, c.pos)
	}
	s := min(cfg.Shelters, len(cells)-n)
	for k := 0; k < s; k++ {
		t.Shelters = append(t.Shelters, cells[len(cells)-1-k].pos)
	}
	return t
}

// elevation returns normalized [0,1] elevation from three octaves of noise.
func (t *Terrain) elevation(x, y float64) float64 {
	nx, ny := x/t.scale, y/t.scale
	e := 1.0*t.noise.Eval2(nx, ny) +
		0.5*t.noise.Eval2(2*nx, 2*ny) +
		0.25*t.noise.Eval2(4*nx, 4*ny)
	return e / 1.75
}

// HeightAt returns the surface height at (x, y).
func (t *Terrain) HeightAt(x, y float64) float64 {
	return t.elevation(x, y) * t.maxElevation
}

// Ground projects p onto the surface.
func (t *Terrain) Ground(p Vec3) Vec3 {
	return Vec3{X: p.X, Y: p.Y, Z: t.HeightAt(p.X, p.Y)}
}

// Clamp keeps p inside the world bounds and on the surface.
func (t *Terrain) Clamp(p Vec3) Vec3 {
	p.X = math.Max(0, math.Min(t.Size, p.X))
	p.Y = math.Max(0, math.Min(t.Size, p.Y))
	return t.Ground(p)
}

// Flow returns a unit steering direction at p that drifts smoothly over time,
// used to make wandering creatures meander instead of jitter.
func (t *Terrain) Flow(p Vec3, seconds float64) Vec3 {
	a := t.noise.Eval3(p.X/t.scale, p.Y/t.scale, seconds/20) * 4 * math.Pi
	return Vec3{X: math.Cos(a), Y: math.Sin(a)}
}
