// Package movement implements the MovementKernel (spec.md Section 4.C5):
// grid pathfinding on 10-unit cells, locomotor speed application, and
// crush/squish collision detection. Paths lead to a fixed goal position; a
// moving target is not intercepted and paths are not re-planned as it moves.
package movement

import (
	"container/heap"
	"math"

	"github.com/dominionforge/dominion-core/entity"
	"github.com/dominionforge/dominion-core/event"
	"github.com/dominionforge/dominion-core/model"
	"github.com/dominionforge/dominion-core/registry"
)

const cellSize = 10.0

// Kernel is the MovementKernel.
type Kernel struct {
	Reg    *registry.Registry
	Store  *entity.Store
	Bus    *event.Bus
	grid   *passabilityGrid
}

// passabilityGrid marks which 10-unit cells are blocked by static terrain.
// The host supplies it; a nil grid means every cell is passable.
type passabilityGrid struct {
	cols, rows int
	blocked    []bool
}

func NewKernel(reg *registry.Registry, store *entity.Store, bus *event.Bus) *Kernel {
	return &Kernel{Reg: reg, Store: store, Bus: bus}
}

// SetPassability installs a static blocked-cell mask derived from the map's
// heightmap/placed-object footprint (spec.md Section 9 Open Questions: FoW
// and pathfind cells are both 10 world units).
func (k *Kernel) SetPassability(cols, rows int, blocked []bool) {
	k.grid = &passabilityGrid{cols: cols, rows: rows, blocked: blocked}
}

func (g *passabilityGrid) isBlocked(cx, cz int) bool {
	if g == nil {
		return false
	}
	if cx < 0 || cz < 0 || cx >= g.cols || cz >= g.rows {
		return true
	}
	return g.blocked[cz*g.cols+cx]
}

func worldToCell(x, z float64) (int, int) {
	return int(math.Floor(x / cellSize)), int(math.Floor(z / cellSize))
}

func cellToWorld(cx, cz int) model.Vec3 {
	return model.Vec3{X: (float64(cx) + 0.5) * cellSize, Z: (float64(cz) + 0.5) * cellSize}
}

// SetMoveGoal begins a new path toward pos, aborting any path in progress.
func (k *Kernel) SetMoveGoal(id model.EntityID, pos model.Vec3) bool {
	e, ok := k.Store.Get(id)
	if !ok || !e.Alive {
		return false
	}
	if e.Status.Disabled() {
		return false
	}
	path := k.findPath(model.Vec3{X: e.X, Y: e.Y, Z: e.Z}, pos)
	if path == nil {
		return false
	}
	e.Locomotor.MoveGoal = &pos
	e.Locomotor.Path = path
	return true
}

// Stop aborts the current path (spec.md "Moving attackers abort current
// path on explicit stop").
func (k *Kernel) Stop(id model.EntityID) {
	e, ok := k.Store.Get(id)
	if !ok {
		return
	}
	e.Locomotor.MoveGoal = nil
	e.Locomotor.Path = nil
}

// Tick resolves crush collisions from the positions and headings at the
// start of the frame, then advances every entity with an active path by one
// frame.
func (k *Kernel) Tick(frame int64) {
	k.resolveCrush(frame)
	for _, id := range k.Store.AllIDs() {
		e, _ := k.Store.Get(id)
		if !e.Alive || e.Status.Disabled() {
			continue
		}
		k.advance(e)
	}
}

func (k *Kernel) advance(e *entity.Entity) {
	if len(e.Locomotor.Path) == 0 {
		return
	}
	speed := e.Locomotor.Speed / model.FrameHz // units/frame
	if speed <= 0 {
		return
	}
	remaining := speed
	for remaining > 0 && len(e.Locomotor.Path) > 0 {
		next := e.Locomotor.Path[0]
		dx := next.X - e.X
		dz := next.Z - e.Z
		dist := math.Hypot(dx, dz)
		if dist <= remaining {
			e.X, e.Z = next.X, next.Z
			e.Locomotor.Path = e.Locomotor.Path[1:]
			remaining -= dist
			continue
		}
		e.X += dx / dist * remaining
		e.Z += dz / dist * remaining
		e.Angle = math.Atan2(dz, dx)
		remaining = 0
	}
	if len(e.Locomotor.Path) == 0 {
		e.Locomotor.MoveGoal = nil
	}
}

// resolveCrush implements the crush/squish rule (spec.md Section 4.C5):
// a moving crusher overlapping a lower-crushable-level hostile whose
// velocity carries it toward the victim deals lethal CRUSH damage. Allies
// and mid-conversion hijackers are exempt.
func (k *Kernel) resolveCrush(frame int64) {
	ids := k.Store.AllIDs()
	for _, id := range ids {
		crusher, ok := k.Store.Get(id)
		if !ok || !crusher.Alive {
			continue
		}
		def, ok := k.Reg.ObjectDef(crusher.TemplateName)
		if !ok || def.CrusherLevel <= 0 || len(crusher.Locomotor.Path) == 0 && crusher.Locomotor.MoveGoal == nil {
			continue
		}
		for _, vid := range ids {
			if vid == id {
				continue
			}
			victim, ok := k.Store.Get(vid)
			if !ok || !victim.Alive {
				continue
			}
			if victim.Side == crusher.Side {
				continue
			}
			if crusher.Status.Has(model.Hijacked) {
				continue // mid-conversion hijacker exempt
			}
			vdef, ok := k.Reg.ObjectDef(victim.TemplateName)
			if !ok || vdef.CrushableLevel >= def.CrusherLevel {
				continue
			}
			dx := victim.X - crusher.X
			dz := victim.Z - crusher.Z
			dist := math.Hypot(dx, dz)
			overlapThresh := crusher.BoundingSphereRadius() + victim.BoundingSphereRadius()
			if dist > overlapThresh {
				continue
			}
			vx := math.Cos(crusher.Angle)
			vz := math.Sin(crusher.Angle)
			if vx*dx+vz*dz <= 0 {
				continue // moving away from victim
			}
			victim.Health = 0
			victim.Alive = false
			k.Bus.EmitDeath(victim.ID, model.Vec3{X: victim.X, Y: victim.Y, Z: victim.Z})
		}
	}
}

// --- A* on 10-unit cells ---

type pathNode struct {
	cx, cz int
	g, f   float64
	index  int
}

type nodeQueue []*pathNode

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].f < q[j].f }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *nodeQueue) Push(x interface{}) { n := x.(*pathNode); n.index = len(*q); *q = append(*q, n) }
func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

var neighborOffsets = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

// findPath runs grid A* from start to goal, returning a list of cell-center
// waypoints, or nil if no path exists.
func (k *Kernel) findPath(start, goal model.Vec3) []model.Vec3 {
	sx, sz := worldToCell(start.X, start.Z)
	gx, gz := worldToCell(goal.X, goal.Z)
	if k.grid.isBlocked(gx, gz) {
		return nil
	}

	open := &nodeQueue{}
	heap.Init(open)
	startNode := &pathNode{cx: sx, cz: sz, g: 0, f: heuristic(sx, sz, gx, gz)}
	heap.Push(open, startNode)
	cameFrom := map[pathKey]pathKey{}
	gScore := map[pathKey]float64{{sx, sz}: 0}
	visited := map[pathKey]bool{}

	const maxExpansions = 20000
	expansions := 0

	for open.Len() > 0 {
		expansions++
		if expansions > maxExpansions {
			return nil
		}
		cur := heap.Pop(open).(*pathNode)
		ck := pathKey{cur.cx, cur.cz}
		if visited[ck] {
			continue
		}
		visited[ck] = true
		if cur.cx == gx && cur.cz == gz {
			return reconstructPath(cameFrom, ck, pathKey{sx, sz})
		}
		for _, off := range neighborOffsets {
			nx, nz := cur.cx+off[0], cur.cz+off[1]
			if k.grid.isBlocked(nx, nz) {
				continue
			}
			step := 1.0
			if off[0] != 0 && off[1] != 0 {
				step = math.Sqrt2
			}
			ng := gScore[ck] + step
			nk := pathKey{nx, nz}
			if existing, ok := gScore[nk]; ok && existing <= ng {
				continue
			}
			gScore[nk] = ng
			cameFrom[nk] = ck
			heap.Push(open, &pathNode{cx: nx, cz: nz, g: ng, f: ng + heuristic(nx, nz, gx, gz)})
		}
	}
	return nil
}

func heuristic(x, z, gx, gz int) float64 {
	return math.Hypot(float64(gx-x), float64(gz-z))
}

type pathKey struct{ x, z int }

func reconstructPath(cameFrom map[pathKey]pathKey, goal, start pathKey) []model.Vec3 {
	var cells []pathKey
	cur := goal
	for cur != start {
		cells = append(cells, cur)
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
	}
	out := make([]model.Vec3, len(cells))
	for i, c := range cells {
		out[len(cells)-1-i] = cellToWorld(c.x, c.z)
	}
	return out
}
