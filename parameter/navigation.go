package parameter

import "time"

// Navigation - Visibility Grid
const (
	// NavGridWidth is default navigable extent along X (world units)
	NavGridWidth = 20.0

	// NavGridHeight is default navigable extent along Z (world units)
	NavGridHeight = 20.0

	// NavCellWidth is nominal cell width before fitting to the extent
	NavCellWidth = 1.0

	// NavLowHeight is the crouch observer height
	NavLowHeight = 0.5

	// NavHighHeight is the upright observer height
	NavHighHeight = 1.5

	// NavLateralMargin is the corridor half-width as a fraction of cell size
	NavLateralMargin = 0.2

	// NavBuildWorkers caps parallel row evaluation during build, <=1 runs serially
	NavBuildWorkers = 4
)

// Navigation - Agent Following
const (
	// NavWaypointTolerance is arrival distance at which a waypoint is consumed
	NavWaypointTolerance = 0.1

	// NavMinDistToTarget is distance under which an agent stops pursuing
	NavMinDistToTarget = 0.7

	// NavAlertedMaxPathLength bounds path length for alerted pursuit (world units)
	NavAlertedMaxPathLength = 7.0

	// NavVisionRange bounds how far from the target an alerted pursuit may stray
	NavVisionRange = 4.0

	// NavRequeryInterval is the polling period for periodic re-queries
	NavRequeryInterval = 500 * time.Millisecond
)

// Navigation - Scene
const (
	// SceneCoverTop is the default top of low cover (blocks crouch only)
	SceneCoverTop = 1.0

	// SceneWallTop is the default top of tall walls (blocks both heights)
	SceneWallTop = 3.0

	// SceneReloadDebounce is the quiet period after the last file event before a reload
	SceneReloadDebounce = 100 * time.Millisecond
)
