package navigation

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero width", func(c *Config) { c.Width = 0 }},
		{"negative height", func(c *Config) { c.Height = -1 }},
		{"zero cell width", func(c *Config) { c.CellWidth = 0 }},
		{"cell too large for extent", func(c *Config) { c.CellWidth = 50 }},
		{"high below low", func(c *Config) { c.HighHeight = 0.1 }},
		{"margin out of range", func(c *Config) { c.LateralMargin = 0.5 }},
		{"NaN width", func(c *Config) { c.Width = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(10, 1, nil)
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
			if _, err := Build(context.Background(), cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected Build to fail with ErrInvalidConfig, got %v", err)
			}
		})
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestBuild_CellSizeTilesExtent(t *testing.T) {
	tests := []struct {
		width, height, cell float64
		cols, rows          int
	}{
		{10, 10, 1, 10, 10},
		{10, 7, 3, 3, 2},
		{5.5, 2.2, 0.7, 8, 3},
		{1, 1, 1.4, 1, 1},
	}
	for _, tt := range tests {
		cfg := testConfig(0, tt.cell, nil)
		cfg.Width, cfg.Height = tt.width, tt.height
		g := mustBuild(t, cfg)

		if g.Cols() != tt.cols || g.Rows() != tt.rows {
			t.Errorf("%vx%v/%v: expected %dx%d cells, got %dx%d",
				tt.width, tt.height, tt.cell, tt.cols, tt.rows, g.Cols(), g.Rows())
		}
		cw, ch := g.CellSize()
		if math.Abs(float64(g.Cols())*cw-tt.width) > 1e-9 {
			t.Errorf("Expected cols*cellWidth == %v, got %v", tt.width, float64(g.Cols())*cw)
		}
		if math.Abs(float64(g.Rows())*ch-tt.height) > 1e-9 {
			t.Errorf("Expected rows*cellHeight == %v, got %v", tt.height, float64(g.Rows())*ch)
		}
		if g.NodeCount() != g.Cols()*g.Rows() {
			t.Errorf("Expected one node per cell, got %d", g.NodeCount())
		}
	}
}

func TestBuild_NodesCenteredOnOrigin(t *testing.T) {
	cfg := testConfig(3, 1, nil)
	cfg.Origin = at(10, -4)
	cfg.Origin[1] = 2
	g := mustBuild(t, cfg)

	center, _ := g.NodeAtGrid(1, 1)
	if !center.World.ApproxEqualThreshold(cfg.Origin, 1e-12) {
		t.Errorf("Expected center node at origin %v, got %v", cfg.Origin, center.World)
	}
	corner := g.Node(0)
	if math.Abs(corner.World.X()-9) > 1e-12 || math.Abs(corner.World.Z()+5) > 1e-12 {
		t.Errorf("Expected first node at (9, -5), got %v", corner.World)
	}
	for id := 0; id < g.NodeCount(); id++ {
		n := g.Node(id)
		if n.ID != id || n.Grid.Y*g.Cols()+n.Grid.X != id {
			t.Errorf("Expected row-major id %d, got grid %v", id, n.Grid)
		}
	}
}

func TestBuild_VisibilitySymmetric(t *testing.T) {
	field := boxField{
		pillar(0.5, 0.5, 0.4, 3),
		pillar(-2, 1, 0.3, 1), // low cover
		{minX: -3, minZ: -1.1, maxX: 0, maxZ: -0.9, top: 3},
	}
	g := mustBuild(t, testConfig(7, 1, field))

	for a := 0; a < g.NodeCount(); a++ {
		for b := 0; b < g.NodeCount(); b++ {
			na, nb := g.Node(a), g.Node(b)
			for _, h := range []HeightClass{Crouch, Upright} {
				if g.IsVisible(na, nb, h) != g.IsVisible(nb, na, h) {
					t.Fatalf("Expected symmetric %v visibility for %v/%v", h, na.Grid, nb.Grid)
				}
			}
			if g.IsVisible(na, nb, Crouch) && !g.IsVisible(na, nb, Upright) {
				t.Fatalf("Expected crouch visibility to imply upright for %v/%v", na.Grid, nb.Grid)
			}
		}
	}
}

func TestBuild_LowCoverBlocksCrouchOnly(t *testing.T) {
	// Cover wall between the two middle-row end nodes
	field := boxField{{minX: -0.1, minZ: -2, maxX: 0.1, maxZ: 2, top: 1}}
	g := mustBuild(t, testConfig(3, 1, field))

	left, _ := g.NodeAtGrid(0, 1)
	right, _ := g.NodeAtGrid(2, 1)
	if g.IsVisible(left, right, Crouch) {
		t.Error("Expected low cover to block crouch visibility")
	}
	if !g.IsVisible(left, right, Upright) {
		t.Error("Expected low cover not to block upright visibility")
	}

	top, _ := g.NodeAtGrid(0, 0)
	bottom, _ := g.NodeAtGrid(0, 2)
	if !g.IsVisible(top, bottom, Crouch) {
		t.Error("Expected nodes on the same side of the cover to see each other")
	}
}

func TestBuild_LateralMarginRejectsGrazingPairs(t *testing.T) {
	// Thin post just off the center line between (0,1) and (2,1)
	field := boxField{pillar(0, 0.15, 0.08, 3)}

	cfg := testConfig(3, 1, field)
	cfg.LateralMargin = 0
	g := mustBuild(t, cfg)
	left, _ := g.NodeAtGrid(0, 1)
	right, _ := g.NodeAtGrid(2, 1)
	if !g.IsVisible(left, right, Upright) {
		t.Fatal("Expected center ray to pass the post without lateral margin")
	}

	cfg.LateralMargin = 0.2
	g = mustBuild(t, cfg)
	left, _ = g.NodeAtGrid(0, 1)
	right, _ = g.NodeAtGrid(2, 1)
	if g.IsVisible(left, right, Upright) {
		t.Error("Expected lateral margin to reject the grazing pair")
	}
}

func TestBuild_ParallelMatchesSerial(t *testing.T) {
	field := boxField{pillar(1, 1, 0.6, 3), pillar(-2, -1, 0.4, 1)}
	serial := mustBuild(t, testConfig(6, 1, field))

	cfg := testConfig(6, 1, field)
	cfg.Workers = 8
	parallel := mustBuild(t, cfg)

	if !slices.Equal(serial.crouch, parallel.crouch) || !slices.Equal(serial.upright, parallel.upright) {
		t.Error("Expected parallel build to produce identical adjacency")
	}
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Build(ctx, testConfig(4, 1, nil)); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestNearestNode_Clamps(t *testing.T) {
	g := mustBuild(t, testConfig(5, 1, nil))

	tests := []struct {
		x, z float64
		want GridPos
	}{
		{0, 0, GridPos{2, 2}},
		{-2, -2, GridPos{0, 0}},
		{0.49, -0.51, GridPos{2, 1}},
		{100, 0, GridPos{4, 2}},
		{-100, 100, GridPos{0, 4}},
	}
	for _, tt := range tests {
		if got := g.NearestNode(at(tt.x, tt.z)).Grid; got != tt.want {
			t.Errorf("NearestNode(%v, %v): expected %v, got %v", tt.x, tt.z, tt.want, got)
		}
	}
}

func TestNodeAt_RejectsOutOfBounds(t *testing.T) {
	g := mustBuild(t, testConfig(4, 1, nil))

	if _, err := g.NodeAt(at(2.5, 0)); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Expected ErrOutOfBounds, got %v", err)
	}
	n, err := g.NodeAt(at(2, -2))
	if err != nil {
		t.Fatalf("Expected extent corner to be accepted, got %v", err)
	}
	if n.Grid != (GridPos{3, 0}) {
		t.Errorf("Expected corner node (3,0), got %v", n.Grid)
	}
}

func TestForEachNeighbor_MatchesIsVisible(t *testing.T) {
	g := mustBuild(t, testConfig(5, 1, boxField{pillar(0, 0, 0.4, 3)}))

	for id := 0; id < g.NodeCount(); id++ {
		var got []int
		g.ForEachNeighbor(id, Crouch, func(nb int) bool {
			got = append(got, nb)
			return true
		})
		var want []int
		for b := 0; b < g.NodeCount(); b++ {
			if g.IsVisible(g.Node(id), g.Node(b), Crouch) {
				want = append(want, b)
			}
		}
		if !slices.Equal(got, want) {
			t.Fatalf("Node %d: expected neighbors %v, got %v", id, want, got)
		}
	}

	stats := g.Stats()
	if stats.Nodes != 25 || stats.CrouchEdges == 0 || stats.UprightEdges < stats.CrouchEdges {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestOpenField_FullyConnected(t *testing.T) {
	g := mustBuild(t, testConfig(4, 1, nil))
	n := g.NodeCount()
	want := n * (n - 1) / 2
	if got := g.EdgeCount(Crouch); got != want {
		t.Errorf("Expected %d crouch edges in open field, got %d", want, got)
	}
	if got := g.EdgeCount(Upright); got != want {
		t.Errorf("Expected %d upright edges in open field, got %d", want, got)
	}
}
