// pkg/engine/simulation.go
package engine

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"time"

	"github.com/opd-ai/go-quadsim/pkg/config"
	"github.com/opd-ai/go-quadsim/pkg/event"
	"github.com/opd-ai/go-quadsim/pkg/logging"
	"github.com/opd-ai/go-quadsim/pkg/physics"
	"github.com/opd-ai/go-quadsim/pkg/validation"
)

// BodyView is a read-only snapshot of a body for presentation.
type BodyView struct {
	ID       physics.BodyID
	Position physics.Vector2D
	Velocity physics.Vector2D
	Radius   float64
	Color    color.RGBA
}

// Simulation owns the bodies of a walled world and advances them one
// frame at a time. It is not safe for concurrent use; a single goroutine
// must drive it.
type Simulation struct {
	Config *config.SimConfig

	world    physics.Bounds
	bodies   []*physics.Body
	nextID   physics.BodyID
	detector Detector
	margin   float64
	index    *physics.QuadTree
	frame    uint64
	last     FrameStats
	totals   Totals

	rng    *rand.Rand
	bus    *event.Bus
	logger *logging.Logger
	ctx    context.Context
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithEventBus publishes simulation events on bus.
func WithEventBus(bus *event.Bus) Option {
	return func(s *Simulation) {
		s.bus = bus
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *Simulation) {
		s.logger = logger
	}
}

// WithRand sets the random source used for spawning.
func WithRand(rng *rand.Rand) Option {
	return func(s *Simulation) {
		s.rng = rng
	}
}

// WithContext sets the context passed to the logger, typically one
// carrying a correlation ID.
func WithContext(ctx context.Context) Option {
	return func(s *Simulation) {
		s.ctx = ctx
	}
}

// NewSimulation creates a simulation from a validated configuration and
// seeds cfg.Seed.Count random bodies. A nil cfg uses config.DefaultConfig.
func NewSimulation(cfg *config.SimConfig, opts ...Option) (*Simulation, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	strategy, err := ParseStrategy(cfg.Detection.Strategy)
	if err != nil {
		return nil, err
	}

	s := &Simulation{
		Config: cfg,
		world:  physics.NewBounds(0, 0, cfg.World.Width, cfg.World.Height),
		margin: cfg.Detection.MarginFactor,
		nextID: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.applyDefaults(cfg.Seed.RandomSeed)
	s.detector = NewDetector(strategy, s.margin)

	if err := s.Seed(cfg.Seed.Count); err != nil {
		return nil, err
	}

	s.logger.Info(s.ctx, "Simulation created",
		"width", cfg.World.Width,
		"height", cfg.World.Height,
		"strategy", strategy.String(),
		"bodies", len(s.bodies),
	)
	return s, nil
}

// applyDefaults fills in collaborators not supplied through options.
func (s *Simulation) applyDefaults(seed uint64) {
	if s.bus == nil {
		s.bus = event.NewEventBus()
	}
	if s.logger == nil {
		s.logger = logging.NewNopLogger()
	}
	if s.ctx == nil {
		s.ctx = context.Background()
	}
	if s.rng == nil {
		if seed == 0 {
			seed = uint64(time.Now().UnixNano())
		}
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// EventBus returns the bus the simulation publishes on.
func (s *Simulation) EventBus() *event.Bus {
	return s.bus
}

// World returns the world rectangle.
func (s *Simulation) World() physics.Bounds {
	return s.world
}

// Spawn adds a body with a random display color and returns its ID.
func (s *Simulation) Spawn(position, velocity physics.Vector2D, radius float64) (physics.BodyID, error) {
	if err := validation.ValidateSpawn(s.world, position, velocity, radius); err != nil {
		return 0, fmt.Errorf("spawn rejected: %w", err)
	}

	body, err := physics.NewBody(s.nextID, position, velocity, radius, s.randomColor())
	if err != nil {
		return 0, err
	}
	s.nextID++
	s.bodies = append(s.bodies, body)

	s.bus.Publish(event.NewBodyEvent(event.BodySpawned, s, uint64(body.ID), radius))
	s.logger.Debug(s.ctx, "Body spawned",
		"id", body.ID,
		"x", position.X,
		"y", position.Y,
		"radius", radius,
	)
	return body.ID, nil
}

// SpawnRandom adds a body at the configured spawn point with a random
// radius, heading and speed.
func (s *Simulation) SpawnRandom() (physics.BodyID, error) {
	x, y := s.Config.SpawnPoint()
	return s.Spawn(physics.Vector2D{X: x, Y: y}, s.randomVelocity(), s.randomRadius())
}

// Seed adds n bodies at random positions inside the world.
func (s *Simulation) Seed(n int) error {
	for i := 0; i < n; i++ {
		radius := s.randomRadius()
		position := physics.Vector2D{
			X: radius + s.rng.Float64()*(s.world.Width-2*radius),
			Y: radius + s.rng.Float64()*(s.world.Height-2*radius),
		}
		if _, err := s.Spawn(position, s.randomVelocity(), radius); err != nil {
			return logging.WrapError(err, "seeding body %d of %d", i+1, n)
		}
	}
	return nil
}

// ResetAll removes every body and clears counters and the last index.
// Body IDs keep increasing across resets.
func (s *Simulation) ResetAll() {
	removed := len(s.bodies)
	clear(s.bodies)
	s.bodies = s.bodies[:0]
	s.index = nil
	s.last = FrameStats{Strategy: s.detector.Strategy()}
	s.totals = Totals{}

	s.bus.Publish(event.NewEvent(event.SimulationReset, s))
	s.logger.Info(s.ctx, "Simulation reset", "removed", removed)
}

// Strategy returns the active detection strategy.
func (s *Simulation) Strategy() Strategy {
	return s.detector.Strategy()
}

// SetStrategy switches the detection strategy for subsequent frames.
func (s *Simulation) SetStrategy(strategy Strategy) {
	from := s.detector.Strategy()
	if from == strategy {
		return
	}
	s.detector = NewDetector(strategy, s.margin)

	s.bus.Publish(event.NewStrategyEvent(s, from.String(), strategy.String()))
	s.logger.Info(s.ctx, "Detection strategy changed", "from", from.String(), "to", strategy.String())
}

// ToggleStrategy switches to the other strategy and returns it.
func (s *Simulation) ToggleStrategy() Strategy {
	next := s.detector.Strategy().Toggle()
	s.SetStrategy(next)
	return next
}

// MarginFactor returns the indexed query window scale.
func (s *Simulation) MarginFactor() float64 {
	return s.margin
}

// SetMarginFactor changes the indexed query window scale.
func (s *Simulation) SetMarginFactor(factor float64) error {
	if err := validation.ValidateMarginFactor(factor); err != nil {
		return err
	}
	s.margin = factor
	if indexed, ok := s.detector.(*IndexedDetector); ok {
		indexed.MarginFactor = factor
	}
	return nil
}

// StepFrame advances every body by dt seconds, rebuilds the index from an
// empty root and resolves collisions with the active strategy. dt is
// clamped to [0, Frame.MaxDeltaTime].
func (s *Simulation) StepFrame(dt float64) FrameStats {
	dt = s.clampDelta(dt)

	for _, body := range s.bodies {
		body.Advance(dt, s.world.Width, s.world.Height)
	}

	if s.index == nil {
		s.index = physics.NewQuadTree(s.world, s.Config.Index.Capacity, s.Config.Index.MaxDepth)
	} else {
		s.index.Clear()
	}
	report := s.index.Build(s.bodies)
	s.reportDrops(report)

	stats := s.detector.Detect(s.bodies, s.index, s.collisionHandler())
	s.frame++
	stats.Frame = s.frame
	stats.IndexedBodies = s.index.Len()
	stats.DroppedBodies = report.Dropped()

	s.totals.Add(stats)
	s.last = stats

	s.bus.Publish(event.NewFrameEvent(s, stats.Frame, stats.Strategy.String(),
		stats.ChecksPerformed, stats.CollisionsThisFrame, stats.DroppedBodies))
	return stats
}

// clampDelta keeps dt finite and inside [0, MaxDeltaTime].
func (s *Simulation) clampDelta(dt float64) float64 {
	if math.IsNaN(dt) || dt < 0 {
		return 0
	}
	return math.Min(dt, s.Config.Frame.MaxDeltaTime)
}

// reportDrops logs and publishes bodies that the index could not hold.
func (s *Simulation) reportDrops(report physics.BuildReport) {
	for _, id := range report.OutOfBounds {
		s.logger.Debug(s.ctx, "Index insert dropped", "id", id, "reason", "out_of_bounds")
		s.bus.Publish(event.NewDropEvent(s, uint64(id), "out_of_bounds"))
	}
	for _, id := range report.Unresolved {
		s.logger.Debug(s.ctx, "Index insert dropped", "id", id, "reason", "unresolved")
		s.bus.Publish(event.NewDropEvent(s, uint64(id), "unresolved"))
	}
}

// collisionHandler returns a callback that publishes collision events, or
// nil when nobody listens.
func (s *Simulation) collisionHandler() CollisionFunc {
	if !s.bus.HasSubscribers(event.CollisionResolved) {
		return nil
	}
	return func(a, b *physics.Body, resolution physics.Resolution) {
		s.bus.Publish(event.NewCollisionEvent(s, uint64(a.ID), uint64(b.ID), resolution.String()))
	}
}

// Bodies returns a snapshot of all bodies in spawn order.
func (s *Simulation) Bodies() []BodyView {
	views := make([]BodyView, len(s.bodies))
	for i, body := range s.bodies {
		views[i] = viewOf(body)
	}
	return views
}

// BodyCount returns the number of bodies.
func (s *Simulation) BodyCount() int {
	return len(s.bodies)
}

// Body returns a snapshot of one body.
func (s *Simulation) Body(id physics.BodyID) (BodyView, bool) {
	for _, body := range s.bodies {
		if body.ID == id {
			return viewOf(body), true
		}
	}
	return BodyView{}, false
}

func viewOf(b *physics.Body) BodyView {
	return BodyView{
		ID:       b.ID,
		Position: b.Position,
		Velocity: b.Velocity,
		Radius:   b.Radius(),
		Color:    b.Color,
	}
}

// WalkRegions visits the regions of the index built by the last frame. It
// does nothing before the first frame or after a reset.
func (s *Simulation) WalkRegions(fn func(region physics.Bounds, depth int)) {
	if s.index == nil {
		return
	}
	s.index.Walk(fn)
}

// LastStats returns the statistics of the most recent frame.
func (s *Simulation) LastStats() FrameStats {
	return s.last
}

// Totals returns collisions accumulated since the last reset.
func (s *Simulation) Totals() Totals {
	return s.totals
}

// Frame returns the number of frames stepped.
func (s *Simulation) Frame() uint64 {
	return s.frame
}

func (s *Simulation) randomRadius() float64 {
	spawn := s.Config.Spawn
	return spawn.MinRadius + s.rng.Float64()*(spawn.MaxRadius-spawn.MinRadius)
}

func (s *Simulation) randomVelocity() physics.Vector2D {
	spawn := s.Config.Spawn
	speed := spawn.MinSpeed + s.rng.Float64()*(spawn.MaxSpeed-spawn.MinSpeed)
	return physics.FromAngle(s.rng.Float64()*2*math.Pi, speed)
}

func (s *Simulation) randomColor() color.RGBA {
	return color.RGBA{
		R: uint8(55 + s.rng.IntN(201)),
		G: uint8(55 + s.rng.IntN(201)),
		B: uint8(55 + s.rng.IntN(201)),
		A: 255,
	}
}
