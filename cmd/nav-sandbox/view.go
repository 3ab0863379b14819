package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/sightgrid/follow"
	"github.com/lixenwraith/sightgrid/navigation"
	"github.com/lixenwraith/sightgrid/vmath"
	"github.com/lixenwraith/sightgrid/world"
)

var (
	styleFloor   = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleCover   = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	stylePath    = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStart   = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleGoal    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleAgent   = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleWarning = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// overlay cycles off -> crouch -> upright
type overlay uint8

const (
	overlayOff overlay = iota
	overlayCrouch
	overlayUpright
)

func (o overlay) String() string {
	switch o {
	case overlayCrouch:
		return "crouch"
	case overlayUpright:
		return "upright"
	default:
		return "off"
	}
}

// sandbox holds the interactive query state over the active world
type sandbox struct {
	worlds interface{ Current() *world.World }

	cursor      navigation.GridPos
	start, goal navigation.GridPos
	hasStart    bool
	hasGoal     bool

	mode     navigation.NeighborMode
	simplify bool
	preserve bool
	maxLen   float64
	overlay  overlay

	result navigation.Result
	agent  *follow.Cursor
	agentP mgl64.Vec2
	status string

	chime func(found bool)
}

func newSandbox(worlds interface{ Current() *world.World }) *sandbox {
	return &sandbox{worlds: worlds, agent: follow.NewCursor(nil)}
}

// handleKey applies one key press; false quits
func (s *sandbox) handleKey(ev *tcell.EventKey) bool {
	w := s.worlds.Current()
	if w == nil {
		return ev.Key() != tcell.KeyEscape && ev.Key() != tcell.KeyCtrlC
	}
	cols, rows := w.Grid.Cols(), w.Grid.Rows()

	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		s.cursor.Y = max(s.cursor.Y-1, 0)
	case tcell.KeyDown:
		s.cursor.Y = min(s.cursor.Y+1, rows-1)
	case tcell.KeyLeft:
		s.cursor.X = max(s.cursor.X-1, 0)
	case tcell.KeyRight:
		s.cursor.X = min(s.cursor.X+1, cols-1)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			return false
		case 's':
			s.start, s.hasStart = s.cursor, true
		case 'g':
			s.goal, s.hasGoal = s.cursor, true
		case 'm':
			if s.mode == navigation.FullReachability {
				s.mode = navigation.EightConnected
			} else {
				s.mode = navigation.FullReachability
			}
		case 'p':
			s.simplify = !s.simplify
		case 'v':
			s.preserve = !s.preserve
		case 'l':
			s.maxLen = math.Max(s.maxLen-1, 0)
		case 'L':
			s.maxLen++
		case 'c':
			s.overlay = (s.overlay + 1) % 3
			return true
		case 'a':
			s.chase(w)
			return true
		case 'n':
			s.stepAgent()
			return true
		default:
			return true
		}
	default:
		return true
	}

	s.recompute()
	return true
}

// query assembles the current settings into a pathfinder query
func (s *sandbox) query(w *world.World) navigation.Query {
	return navigation.Query{
		Start:                 s.nodePos(w, s.start),
		Goal:                  s.nodePos(w, s.goal),
		MaxPathLength:         s.maxLen,
		PreserveEndVisibility: s.preserve,
		Mode:                  s.mode,
		Simplify:              s.simplify,
	}
}

func (s *sandbox) nodePos(w *world.World, p navigation.GridPos) mgl64.Vec3 {
	n, ok := w.Grid.NodeAtGrid(p.X, p.Y)
	if !ok {
		return w.Grid.NearestNode(w.Ground(mgl64.Vec2{})).World
	}
	return n.World
}

// recompute reruns the query after any change; also called on scene reload
func (s *sandbox) recompute() {
	w := s.worlds.Current()
	if w == nil || !s.hasStart || !s.hasGoal {
		return
	}
	s.clampTo(w)
	s.run(w, s.query(w))
}

func (s *sandbox) run(w *world.World, q navigation.Query) {
	s.result = w.Pathfinder.Find(q)
	s.agentP = vmath.Flatten(q.Start)
	s.agent.Reset(s.result.Waypoints)
	if s.result.Found {
		s.status = fmt.Sprintf("path: %d waypoints, cost %.2f, %d expanded", len(s.result.Waypoints), s.result.Cost, s.result.Expanded)
	} else {
		s.status = fmt.Sprintf("no path (%d expanded)", s.result.Expanded)
	}
	if s.chime != nil {
		s.chime(s.result.Found)
	}
}

// chase runs the alerted pursuit preset from start toward goal
func (s *sandbox) chase(w *world.World) {
	if !s.hasStart || !s.hasGoal {
		s.status = "chase needs start and goal"
		return
	}
	q, ok := follow.Chase(s.nodePos(w, s.start), s.nodePos(w, s.goal))
	if !ok {
		s.status = "chase: already within stopping distance"
		return
	}
	s.run(w, q)
	s.status = "chase " + s.status
}

// stepAgent moves the agent marker to its next waypoint
func (s *sandbox) stepAgent() {
	target, ok := s.agent.Next(s.agentP)
	if !ok {
		s.status = "agent arrived"
		return
	}
	s.agentP = target
	s.status = fmt.Sprintf("agent at (%.2f, %.2f), %d waypoints left", target.X(), target.Y(), len(s.agent.Remaining())-1)
}

// clampTo keeps positions inside a grid that may have shrunk on reload
func (s *sandbox) clampTo(w *world.World) {
	clamp := func(p navigation.GridPos) navigation.GridPos {
		return navigation.GridPos{
			X: min(max(p.X, 0), w.Grid.Cols()-1),
			Y: min(max(p.Y, 0), w.Grid.Rows()-1),
		}
	}
	s.cursor = clamp(s.cursor)
	s.start = clamp(s.start)
	s.goal = clamp(s.goal)
}

// toCell maps a plane position to fractional grid coordinates
func toCell(w *world.World, p mgl64.Vec2) mgl64.Vec2 {
	cw, ch := w.Grid.CellSize()
	ew, eh := w.Grid.Extent()
	o := w.Grid.Origin()
	return mgl64.Vec2{
		(p.X() - (o.X() - ew/2)) / cw,
		(p.Y() - (o.Z() - eh/2)) / ch,
	}
}

// draw renders grid, overlay, path, markers and status
func (s *sandbox) draw(screen tcell.Screen) {
	screen.Clear()
	w := s.worlds.Current()
	if w == nil {
		drawText(screen, 0, 0, styleWarning, "no scene loaded")
		screen.Show()
		return
	}
	s.clampTo(w)
	cols, rows := w.Grid.Cols(), w.Grid.Rows()

	var seen navigation.HeightClass
	if s.overlay == overlayCrouch {
		seen = navigation.Crouch
	} else {
		seen = navigation.Upright
	}
	cursorNode, _ := w.Grid.NodeAtGrid(s.cursor.X, s.cursor.Y)

	high := w.File.Grid.HighHeight
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			n, _ := w.Grid.NodeAtGrid(x, y)
			glyph, style := '·', styleFloor
			if top := w.Scene.HeightAt(vmath.Flatten(n.World)); top > high {
				glyph, style = '█', styleWall
			} else if top > 0 {
				glyph, style = '▪', styleCover
			}
			if s.overlay != overlayOff && n.ID != cursorNode.ID && w.Grid.IsVisible(cursorNode, n, seen) {
				style = style.Background(tcell.ColorDarkGreen)
			}
			screen.SetContent(x, y, glyph, nil, style)
		}
	}

	if len(s.result.Waypoints) > 0 {
		prev := toCell(w, vmath.Flatten(s.nodePos(w, s.start)))
		for _, wp := range s.result.Waypoints {
			next := toCell(w, wp)
			vmath.Traverse(prev, next, func(x, y int) bool {
				if x >= 0 && x < cols && y >= 0 && y < rows {
					screen.SetContent(x, y, '*', nil, stylePath)
				}
				return true
			})
			prev = next
		}
		a := toCell(w, s.agentP)
		ax, ay := int(math.Floor(a.X())), int(math.Floor(a.Y()))
		if ax >= 0 && ax < cols && ay >= 0 && ay < rows {
			screen.SetContent(ax, ay, '@', nil, styleAgent)
		}
	}
	if s.hasStart {
		screen.SetContent(s.start.X, s.start.Y, 'S', nil, styleStart)
	}
	if s.hasGoal {
		screen.SetContent(s.goal.X, s.goal.Y, 'G', nil, styleGoal)
	}

	mainc, combc, style, _ := screen.GetContent(s.cursor.X, s.cursor.Y)
	screen.SetContent(s.cursor.X, s.cursor.Y, mainc, combc, style.Reverse(true))

	maxLen := "inf"
	if s.maxLen > 0 {
		maxLen = fmt.Sprintf("%.0f", s.maxLen)
	}
	drawText(screen, 0, rows, styleStatus, fmt.Sprintf("%s | mode=%s simplify=%v endvis=%v maxlen=%s overlay=%s",
		w.File.Name, s.mode, s.simplify, s.preserve, maxLen, s.overlay))
	drawText(screen, 0, rows+1, styleStatus, s.status)
	drawText(screen, 0, rows+2, styleStatus, "arrows move  s/g start/goal  m mode  p simplify  v endvis  l/L maxlen  c overlay  a chase  n step  q quit")
	screen.Show()
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		screen.SetContent(x, y, r, nil, style)
		x++
	}
}
