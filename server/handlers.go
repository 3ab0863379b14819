package server

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/lixenwraith/sightgrid/navigation"
	"github.com/lixenwraith/sightgrid/parameter"
	"github.com/lixenwraith/sightgrid/world"
)

// WorldSource yields the world that serves the current request
type WorldSource interface {
	Current() *world.World
}

// Handler serves grid and path queries against the active world
type Handler struct {
	worlds   WorldSource
	sessions sync.Map // id -> *session
}

func NewHandler(worlds WorldSource) *Handler {
	return &Handler{worlds: worlds}
}

// pathRequest positions are plane (x, z) pairs on the grid's ground
type pathRequest struct {
	Start                 [2]float64 `json:"start"`
	Goal                  [2]float64 `json:"goal"`
	MaxPathLength         float64    `json:"max_path_length"`
	MaxDistanceToGoal     float64    `json:"max_distance_to_goal"`
	PreserveEndVisibility bool       `json:"preserve_end_visibility"`
	Mode                  string     `json:"mode"`
	Simplify              bool       `json:"simplify"`
}

type pathResponse struct {
	ID        string       `json:"id"`
	Session   string       `json:"session,omitempty"`
	Scene     string       `json:"scene"`
	Found     bool         `json:"found"`
	Waypoints [][2]float64 `json:"waypoints"`
	Cost      float64      `json:"cost"`
	Expanded  int          `json:"expanded"`
}

type visibilityResponse struct {
	Visible bool   `json:"visible"`
	Height  string `json:"height"`
	From    int    `json:"from"`
	To      int    `json:"to"`
}

// query converts the request for w
func (req pathRequest) query(w *world.World) (navigation.Query, error) {
	mode, err := navigation.ParseNeighborMode(req.Mode)
	if err != nil {
		return navigation.Query{}, err
	}
	return navigation.Query{
		Start:                 w.Ground(mgl64.Vec2(req.Start)),
		Goal:                  w.Ground(mgl64.Vec2(req.Goal)),
		MaxPathLength:         req.MaxPathLength,
		MaxDistanceToGoal:     req.MaxDistanceToGoal,
		PreserveEndVisibility: req.PreserveEndVisibility,
		Mode:                  mode,
		Simplify:              req.Simplify,
	}, nil
}

// runPath answers one path request against w
func runPath(w *world.World, req pathRequest) (pathResponse, error) {
	q, err := req.query(w)
	if err != nil {
		return pathResponse{}, err
	}
	res := w.Pathfinder.Find(q)

	waypoints := make([][2]float64, len(res.Waypoints))
	for i, p := range res.Waypoints {
		waypoints[i] = [2]float64(p)
	}
	return pathResponse{
		ID:        uuid.NewString(),
		Scene:     w.File.Name,
		Found:     res.Found,
		Waypoints: waypoints,
		Cost:      res.Cost,
		Expanded:  res.Expanded,
	}, nil
}

// active returns the current world or writes 503
func (h *Handler) active(rw http.ResponseWriter) *world.World {
	w := h.worlds.Current()
	if w == nil {
		errorJSON(rw, http.StatusServiceUnavailable, "no scene loaded")
	}
	return w
}

func (h *Handler) Health(rw http.ResponseWriter, r *http.Request) {
	status := "ok"
	if h.worlds.Current() == nil {
		status = "loading"
	}
	writeJSON(rw, http.StatusOK, map[string]string{"status": status})
}

// Grid reports the active grid's dimensions and edge counts
func (h *Handler) Grid(rw http.ResponseWriter, r *http.Request) {
	w := h.active(rw)
	if w == nil {
		return
	}
	writeJSON(rw, http.StatusOK, struct {
		Scene string `json:"scene"`
		navigation.Stats
	}{w.File.Name, w.Grid.Stats()})
}

// Path runs one query from a JSON body
func (h *Handler) Path(rw http.ResponseWriter, r *http.Request) {
	w := h.active(rw)
	if w == nil {
		return
	}

	var req pathRequest
	if err := decodeStrict(http.MaxBytesReader(rw, r.Body, parameter.ServerMaxBodyBytes), &req); err != nil {
		errorJSON(rw, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := runPath(w, req)
	if err != nil {
		errorJSON(rw, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(rw, http.StatusOK, resp)
}

// Visibility tests the nodes nearest two plane points at one observer height
func (h *Handler) Visibility(rw http.ResponseWriter, r *http.Request) {
	w := h.active(rw)
	if w == nil {
		return
	}

	qs := r.URL.Query()
	var coords [4]float64
	for i, key := range []string{"ax", "az", "bx", "bz"} {
		v, err := strconv.ParseFloat(qs.Get(key), 64)
		if err != nil {
			errorJSON(rw, http.StatusBadRequest, fmt.Sprintf("invalid %s: %q", key, qs.Get(key)))
			return
		}
		coords[i] = v
	}
	height, err := navigation.ParseHeightClass(qs.Get("height"))
	if err != nil {
		errorJSON(rw, http.StatusBadRequest, err.Error())
		return
	}

	a := w.Grid.NearestNode(w.Ground(mgl64.Vec2{coords[0], coords[1]}))
	b := w.Grid.NearestNode(w.Ground(mgl64.Vec2{coords[2], coords[3]}))
	writeJSON(rw, http.StatusOK, visibilityResponse{
		Visible: w.Grid.IsVisible(a, b, height),
		Height:  height.String(),
		From:    a.ID,
		To:      b.ID,
	})
}
