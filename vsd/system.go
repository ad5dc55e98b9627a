// SPDX-License-Identifier: GPL-2.0-or-later

// Package vsd determines the visible set of a level for a view: portal
// stacks, BSP and portal traversal, frustum culling of surfaces and
// primitives, and raycasts against the same structures.
package vsd

import (
	"log/slog"
	"math"

	"govsd/cvar"
	"govsd/cvars"
	"govsd/geom"
	"govsd/level"
	"govsd/math/vec"
)

// Frustum plane order of Query.Frustum.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
	NumFrustumPlanes
)

// MaxPortalStack bounds the portal recursion depth.
const MaxPortalStack = 128

// maxFramePlanes is four side planes plus the far plane.
const maxFramePlanes = 5

// maxScissor bounds the scissor of the top level frame.
const maxScissor = math.MaxFloat32

// defaultZNear is used when the near plane does not lie in front of the view.
const defaultZNear = 0.01

// Query describes one view. Frustum planes face inwards.
type Query struct {
	Frustum        [NumFrustumPlanes]geom.Plane
	ViewPosition   vec.Vec3
	ViewRightVec   vec.Vec3
	ViewUpVec      vec.Vec3
	QueryMask      uint32
	VisibilityMask uint32
}

// VisibleSet receives the result of a query. The slices are reused by the
// next query they are passed to.
type VisibleSet struct {
	Primitives []int
	Surfaces   []int
	// Epoch is the marker visible objects carry in VisPass.
	Epoch int
}

type scissor struct {
	minX, minY float32
	maxX, maxY float32
}

type stackFrame struct {
	planes    [maxFramePlanes]geom.Plane
	numPlanes int
	scissor   scissor
	// portal that produced the frame, -1 for the view itself
	portal int
}

func (f *stackFrame) cullPlanes() []geom.Plane {
	return f.planes[:f.numPlanes]
}

// System holds the state of one query at a time. A level may be shared by
// several systems as long as their queries do not overlap.
type System struct {
	cfg        Config
	log        *slog.Logger
	cvarsDirty bool

	level  *level.Level
	query  *Query
	out    *VisibleSet
	marker int
	// viewMark is the leaf epoch of the view leaf for PVS traversal.
	viewMark   int
	viewDir    vec.Vec3
	viewZNear  float32
	viewPlane  geom.Plane
	viewCenter vec.Vec3
	farPlane   geom.Plane
	hasFar     bool

	stack [MaxPortalStack]stackFrame
	clip  [2][geom.MaxHullPoints]vec.Vec3

	batch       []geom.AABB4
	batchPrims  []int
	batchCulled []bool

	warnedDepth bool
	warnedClip  bool

	stats Stats
	ray   rayState
}

func New(cfg Config) *System {
	s := &System{}
	s.SetConfig(cfg)
	return s
}

func (s *System) SetConfig(cfg Config) {
	s.cfg = cfg
	s.log = cfg.Logger
	if s.log == nil {
		s.log = slog.Default()
	}
}

func (s *System) Config() Config {
	return s.cfg
}

// FollowCvars makes the system reload its configuration from the vsd_ cvars
// whenever one of them changes. Logger and pool are kept.
func (s *System) FollowCvars() {
	dirty := func(*cvar.Cvar) { s.cvarsDirty = true }
	for _, cv := range []*cvar.Cvar{cvars.VsdCullingType, cvars.VsdSIMD, cvars.VsdNoVis, cvars.VsdClipEpsilon} {
		cv.SetCallback(dirty)
	}
	s.cvarsDirty = true
}

func (s *System) reloadCvars() {
	if !s.cvarsDirty {
		return
	}
	s.cvarsDirty = false
	cfg := ConfigFromCvars()
	cfg.Logger = s.cfg.Logger
	cfg.Pool = s.cfg.Pool
	s.SetConfig(cfg)
}

// Stats returns the counters of the last query.
func (s *System) Stats() Stats {
	return s.stats
}

// setupView derives the view plane and the top level frame from q.
func (s *System) setupView(q *Query) {
	pos := q.ViewPosition
	s.viewDir = vec.Cross(q.ViewUpVec, q.ViewRightVec).Normalize()
	s.viewZNear = -q.Frustum[FrustumNear].Dist(pos)
	if !(s.viewZNear > 0) {
		s.viewZNear = defaultZNear
	}
	s.viewPlane = geom.Plane{
		Normal: s.viewDir,
		D:      -vec.Dot(s.viewDir, pos) - s.viewZNear,
	}
	s.viewCenter = vec.MA(pos, s.viewZNear, s.viewDir)
	s.farPlane = q.Frustum[FrustumFar]
	s.hasFar = s.farPlane.IsValid()

	top := &s.stack[0]
	top.portal = -1
	top.numPlanes = 0
	for _, i := range []int{FrustumLeft, FrustumRight, FrustumBottom, FrustumTop} {
		top.planes[top.numPlanes] = q.Frustum[i]
		top.numPlanes++
	}
	if s.hasFar {
		top.planes[top.numPlanes] = s.farPlane
		top.numPlanes++
	}
	top.scissor = scissor{
		minX: -maxScissor, minY: -maxScissor,
		maxX: maxScissor, maxY: maxScissor,
	}
}

func (s *System) begin(l *level.Level, q *Query, out *VisibleSet) {
	s.reloadCvars()
	s.level = l
	s.query = q
	s.out = out
	s.marker = l.NextMarker()
	s.stats = Stats{}
	s.warnedDepth = false
	s.warnedClip = false
	s.batch = s.batch[:0]
	s.batchPrims = s.batchPrims[:0]
	out.Primitives = out.Primitives[:0]
	out.Surfaces = out.Surfaces[:0]
	out.Epoch = s.marker
	s.setupView(q)
}

func (s *System) end() {
	s.level = nil
	s.query = nil
	s.out = nil
}

// QueryVisiblePrimitives fills out with the primitives and surfaces of l
// visible from q. With precomputed visibility the BSP tree is walked,
// otherwise visibility floods through the portals starting at the view area.
func (s *System) QueryVisiblePrimitives(l *level.Level, q *Query, out *VisibleSet) {
	s.begin(l, q, out)
	defer s.end()

	if l.HasPVS && l.HasTree() && !s.cfg.ForcePortalFlood {
		s.viewMark = l.MarkLeafs(l.FindLeaf(q.ViewPosition))
		s.traverseTree(l.Root, 0xf)
	} else if area := l.FindArea(q.ViewPosition); area >= 0 {
		s.flowThroughPortals(area, 0)
	}

	if s.cfg.CullingType == CullingCombined {
		s.runBatch(s.stack[0].cullPlanes())
	}
}
