package navigation

import (
	"fmt"
	"strings"
)

// HeightClass selects one of the two visibility relations
type HeightClass uint8

const (
	Crouch  HeightClass = iota // Visible at low height, implies Upright
	Upright                    // Visible at high height
)

func (h HeightClass) String() string {
	switch h {
	case Crouch:
		return "crouch"
	case Upright:
		return "upright"
	default:
		return fmt.Sprintf("HeightClass(%d)", uint8(h))
	}
}

// ParseHeightClass accepts "crouch"/"low" and "upright"/"high"; empty selects Upright
func ParseHeightClass(s string) (HeightClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crouch", "low":
		return Crouch, nil
	case "upright", "high", "":
		return Upright, nil
	}
	return 0, fmt.Errorf("navigation: unknown height class %q", s)
}

// NeighborMode selects the edge set expanded by the search
type NeighborMode uint8

const (
	// FullReachability expands every crouch-visible node, permitting long straight jumps
	FullReachability NeighborMode = iota

	// EightConnected expands only the 8 adjacent cells that are crouch-visible
	EightConnected
)

func (m NeighborMode) String() string {
	switch m {
	case FullReachability:
		return "full"
	case EightConnected:
		return "eight"
	default:
		return fmt.Sprintf("NeighborMode(%d)", uint8(m))
	}
}

// ParseNeighborMode accepts "full" and "eight" plus long forms; empty selects FullReachability
func ParseNeighborMode(s string) (NeighborMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "full", "full_reachability":
		return FullReachability, nil
	case "eight", "8", "eight_connected":
		return EightConnected, nil
	}
	return 0, fmt.Errorf("navigation: unknown neighbor mode %q", s)
}

// Direction vectors for EightConnected expansion
// Order: N, NE, E, SE, S, SW, W, NW
var DirVectors = [8][2]int{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}
