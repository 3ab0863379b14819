package scene

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lixenwraith/sightgrid/parameter"
)

// GridSpec is the grid section of a scene file; omitted keys take parameter defaults
type GridSpec struct {
	Origin        [3]float64 `yaml:"origin,flow"`
	Width         float64    `yaml:"width"`
	Height        float64    `yaml:"height"`
	CellWidth     float64    `yaml:"cell_width"`
	LowHeight     float64    `yaml:"low_height"`
	HighHeight    float64    `yaml:"high_height"`
	LateralMargin float64    `yaml:"lateral_margin"`
	Workers       int        `yaml:"workers"`
}

// File is the on-disk scene description
type File struct {
	Name      string     `yaml:"name"`
	Grid      GridSpec   `yaml:"grid"`
	Obstacles []Obstacle `yaml:"obstacles"`
}

// Load reads and parses a scene file
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: load %s: %w", path, err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("scene: load %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes YAML scene data over the default grid section
// Keys present in data win, including explicit zeros
func Parse(data []byte) (*File, error) {
	f := File{Grid: DefaultGridSpec()}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}
	return &f, nil
}

// Save writes the scene as YAML
func (f *File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("scene: marshal %s: %w", f.Name, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("scene: save %s: %w", path, err)
	}
	return nil
}

// Scene builds the raycast backend for the file's obstacles
func (f *File) Scene() (*Scene, error) {
	return New(f.Name, f.Obstacles)
}

// DefaultGridSpec returns the grid section used for keys a scene file omits
func DefaultGridSpec() GridSpec {
	return GridSpec{
		Width:         parameter.NavGridWidth,
		Height:        parameter.NavGridHeight,
		CellWidth:     parameter.NavCellWidth,
		LowHeight:     parameter.NavLowHeight,
		HighHeight:    parameter.NavHighHeight,
		LateralMargin: parameter.NavLateralMargin,
		Workers:       parameter.NavBuildWorkers,
	}
}
