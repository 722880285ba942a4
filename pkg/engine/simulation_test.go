package engine

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/opd-ai/go-quadsim/pkg/config"
	"github.com/opd-ai/go-quadsim/pkg/event"
	"github.com/opd-ai/go-quadsim/pkg/logging"
	"github.com/opd-ai/go-quadsim/pkg/physics"
	"github.com/opd-ai/go-quadsim/pkg/validation"
)

func testConfig(width, height float64, strategy string) *config.SimConfig {
	cfg := config.DefaultConfig()
	cfg.World.Width = width
	cfg.World.Height = height
	cfg.Detection.Strategy = strategy
	cfg.Spawn.MinRadius = 5
	cfg.Spawn.MaxRadius = 10
	cfg.Seed.RandomSeed = 99
	return cfg
}

func newTestSimulation(t *testing.T, cfg *config.SimConfig, opts ...Option) *Simulation {
	t.Helper()
	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	sim, err := NewSimulation(cfg, opts...)
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	return sim
}

func TestNewSimulation_Defaults(t *testing.T) {
	sim := newTestSimulation(t, nil)

	if sim.Strategy() != Indexed {
		t.Errorf("expected quadtree strategy, got %v", sim.Strategy())
	}
	if w := sim.World(); w.Width != 1200 || w.Height != 800 {
		t.Errorf("unexpected world %+v", w)
	}
	if sim.BodyCount() != 0 || sim.Frame() != 0 {
		t.Errorf("fresh simulation should be empty, got %d bodies at frame %d", sim.BodyCount(), sim.Frame())
	}
	if sim.EventBus() == nil {
		t.Error("event bus not initialized")
	}
}

func TestNewSimulation_RejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.SimConfig)
	}{
		{"zero capacity", func(c *config.SimConfig) { c.Index.Capacity = 0 }},
		{"NaN spawn ranges", func(c *config.SimConfig) {
			c.Spawn.MaxRadius = math.NaN()
			c.Spawn.MaxSpeed = math.NaN()
		}},
		{"NaN max speed", func(c *config.SimConfig) { c.Spawn.MaxSpeed = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.mutate(cfg)
			if _, err := NewSimulation(cfg); !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestNewSimulation_SeedsBodies(t *testing.T) {
	cfg := testConfig(400, 300, config.StrategyQuadtree)
	cfg.Seed.Count = 25
	sim := newTestSimulation(t, cfg)

	if sim.BodyCount() != 25 {
		t.Fatalf("expected 25 bodies, got %d", sim.BodyCount())
	}
	for _, b := range sim.Bodies() {
		if b.Position.X < b.Radius || b.Position.X > 400-b.Radius ||
			b.Position.Y < b.Radius || b.Position.Y > 300-b.Radius {
			t.Errorf("body %d seeded outside the walls at %v", b.ID, b.Position)
		}
		if b.Radius < 5 || b.Radius >= 10 {
			t.Errorf("body %d radius %v outside [5, 10)", b.ID, b.Radius)
		}
	}
}

func TestNewSimulation_LogsWithRunContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLoggerWithWriter(&buf, slog.LevelDebug)
	ctx := logging.WithCorrelationID(context.Background(), "run-42")

	sim := newTestSimulation(t, nil, WithLogger(logger), WithContext(ctx))
	if _, err := sim.Spawn(physics.Vector2D{X: 50, Y: 50}, physics.Vector2D{}, 5); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected creation and spawn records, got %q", buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, `"correlation_id":"run-42"`) {
			t.Errorf("record without run correlation ID: %s", line)
		}
	}
}

func TestSimulation_Spawn(t *testing.T) {
	sim := newTestSimulation(t, testConfig(200, 200, config.StrategyQuadtree))

	tests := []struct {
		name    string
		pos     physics.Vector2D
		radius  float64
		wantErr error
	}{
		{"inside", physics.Vector2D{X: 100, Y: 100}, 5, nil},
		{"outside", physics.Vector2D{X: 300, Y: 100}, 5, validation.ErrOutsideWorld},
		{"zero radius", physics.Vector2D{X: 100, Y: 100}, 0, validation.ErrInvalidRadius},
		{"NaN", physics.Vector2D{X: math.NaN(), Y: 100}, 5, validation.ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := sim.BodyCount()
			id, err := sim.Spawn(tt.pos, physics.Vector2D{}, tt.radius)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				if sim.BodyCount() != before {
					t.Error("rejected spawn must not add a body")
				}
				return
			}
			if err != nil {
				t.Fatalf("Spawn: %v", err)
			}
			view, ok := sim.Body(id)
			if !ok || view.Position != tt.pos || view.Radius != tt.radius {
				t.Errorf("Body(%d) = %+v, %v", id, view, ok)
			}
		})
	}
}

func TestSimulation_SpawnRandom(t *testing.T) {
	cfg := testConfig(1200, 800, config.StrategyQuadtree)
	cfg.Spawn.MinSpeed, cfg.Spawn.MaxSpeed = 200, 500
	sim := newTestSimulation(t, cfg)

	first, err := sim.SpawnRandom()
	if err != nil {
		t.Fatalf("SpawnRandom: %v", err)
	}
	second, err := sim.SpawnRandom()
	if err != nil {
		t.Fatalf("SpawnRandom: %v", err)
	}
	if second <= first {
		t.Errorf("IDs must increase: %d then %d", first, second)
	}

	view, _ := sim.Body(first)
	if view.Position.X != 600 || view.Position.Y != 50 {
		t.Errorf("expected spawn at top center, got %v", view.Position)
	}
	if speed := view.Velocity.Length(); speed < 200-1e-9 || speed >= 500 {
		t.Errorf("speed %v outside [200, 500)", speed)
	}
	if view.Color.A != 255 {
		t.Errorf("expected opaque color, got %+v", view.Color)
	}
}

func TestSimulation_StepFrameMovesAndIndexes(t *testing.T) {
	sim := newTestSimulation(t, testConfig(1000, 1000, config.StrategyQuadtree))
	id, _ := sim.Spawn(physics.Vector2D{X: 100, Y: 100}, physics.Vector2D{X: 60, Y: 0}, 5)

	stats := sim.StepFrame(0.1)

	view, _ := sim.Body(id)
	if !approx(view.Position.X, 106) || !approx(view.Position.Y, 100) {
		t.Errorf("expected position (106, 100), got %v", view.Position)
	}
	if stats.Frame != 1 || sim.Frame() != 1 {
		t.Errorf("expected frame 1, got %d/%d", stats.Frame, sim.Frame())
	}
	if stats.IndexedBodies != 1 || stats.DroppedBodies != 0 {
		t.Errorf("unexpected index stats %+v", stats)
	}

	regions := 0
	sim.WalkRegions(func(physics.Bounds, int) { regions++ })
	if regions != 1 {
		t.Errorf("expected a single root region, got %d", regions)
	}
}

func TestSimulation_StepFrameReusesIndex(t *testing.T) {
	sim := newTestSimulation(t, testConfig(1000, 1000, config.StrategyQuadtree))
	for _, p := range []physics.Vector2D{
		{X: 20, Y: 20}, {X: 40, Y: 20}, {X: 60, Y: 20},
		{X: 20, Y: 40}, {X: 40, Y: 40}, {X: 60, Y: 40},
	} {
		if _, err := sim.Spawn(p, physics.Vector2D{}, 5); err != nil {
			t.Fatal(err)
		}
	}

	countRegions := func() int {
		n := 0
		sim.WalkRegions(func(physics.Bounds, int) { n++ })
		return n
	}

	first := sim.StepFrame(0)
	firstRegions := countRegions()
	second := sim.StepFrame(0)

	if first.IndexedBodies != 6 || second.IndexedBodies != 6 {
		t.Errorf("indexed bodies = %d then %d, want 6 both frames", first.IndexedBodies, second.IndexedBodies)
	}
	if firstRegions <= 1 || countRegions() != firstRegions {
		t.Errorf("regions = %d then %d, want the same subdivided layout", firstRegions, countRegions())
	}
}

func TestSimulation_StepFrameClampsDelta(t *testing.T) {
	tests := []struct {
		name string
		dt   float64
		want float64
	}{
		{"negative", -1, 100},
		{"NaN", math.NaN(), 100},
		{"capped", 10, 110},
		{"normal", 0.05, 105},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := newTestSimulation(t, testConfig(1000, 1000, config.StrategyBruteForce))
			id, _ := sim.Spawn(physics.Vector2D{X: 100, Y: 500}, physics.Vector2D{X: 100}, 5)
			sim.StepFrame(tt.dt)
			view, _ := sim.Body(id)
			if !approx(view.Position.X, tt.want) {
				t.Errorf("x = %v, want %v", view.Position.X, tt.want)
			}
		})
	}
}

func TestSimulation_HeadOnScenario(t *testing.T) {
	for _, strategy := range []string{config.StrategyQuadtree, config.StrategyBruteForce} {
		t.Run(strategy, func(t *testing.T) {
			sim := newTestSimulation(t, testConfig(100, 100, strategy))
			target, _ := sim.Spawn(physics.Vector2D{X: 50, Y: 50}, physics.Vector2D{}, 5)
			mover, _ := sim.Spawn(physics.Vector2D{X: 50, Y: 20}, physics.Vector2D{X: 0, Y: 50}, 5)

			var collided bool
			for i := 0; i < 120 && !collided; i++ {
				collided = sim.StepFrame(1.0/60.0).CollisionsThisFrame > 0
			}
			if !collided {
				t.Fatal("bodies never collided")
			}

			a, _ := sim.Body(target)
			b, _ := sim.Body(mover)
			if b.Velocity.Y > 1e-9 {
				t.Errorf("approaching body still moves toward the target: vy = %v", b.Velocity.Y)
			}
			if !approx(a.Velocity.Y, 50) {
				t.Errorf("target should take the momentum, vy = %v", a.Velocity.Y)
			}
			if d := a.Position.Distance(b.Position); d < 10-1e-9 {
				t.Errorf("bodies still overlap after resolution: distance %v", d)
			}
		})
	}
}

func TestSimulation_StrategiesAgreeOnSparseField(t *testing.T) {
	counts := make(map[Strategy]int)
	for _, strategy := range []Strategy{BruteForce, Indexed} {
		sim := newTestSimulation(t, testConfig(1200, 800, config.StrategyQuadtree))
		sim.SetStrategy(strategy)
		for _, b := range pairedField(t) {
			if _, err := sim.Spawn(b.Position, physics.Vector2D{}, b.Radius()); err != nil {
				t.Fatalf("Spawn: %v", err)
			}
		}
		counts[strategy] = sim.StepFrame(0).CollisionsThisFrame
	}

	if counts[BruteForce] != 20 || counts[Indexed] != counts[BruteForce] {
		t.Errorf("collision counts differ: %v", counts)
	}
}

func TestSimulation_TotalsAndReset(t *testing.T) {
	sim := newTestSimulation(t, testConfig(200, 200, config.StrategyBruteForce))
	sim.Spawn(physics.Vector2D{X: 100, Y: 100}, physics.Vector2D{}, 10)
	sim.Spawn(physics.Vector2D{X: 110, Y: 100}, physics.Vector2D{}, 10)

	sim.StepFrame(0)
	sim.ToggleStrategy()
	sim.Spawn(physics.Vector2D{X: 150, Y: 150}, physics.Vector2D{}, 10)
	sim.Spawn(physics.Vector2D{X: 160, Y: 150}, physics.Vector2D{}, 10)
	sim.StepFrame(0)

	totals := sim.Totals()
	if totals.BruteForce != 1 || totals.Indexed != 1 || totals.All != 2 {
		t.Errorf("unexpected totals %+v", totals)
	}
	if sim.LastStats().Strategy != Indexed {
		t.Errorf("last stats should come from the indexed strategy, got %v", sim.LastStats().Strategy)
	}

	sim.ResetAll()

	if sim.BodyCount() != 0 {
		t.Errorf("expected no bodies after reset, got %d", sim.BodyCount())
	}
	if sim.Totals() != (Totals{}) {
		t.Errorf("totals not cleared: %+v", sim.Totals())
	}
	if sim.LastStats().CollisionsThisFrame != 0 {
		t.Errorf("last stats not cleared: %+v", sim.LastStats())
	}
	walked := false
	sim.WalkRegions(func(physics.Bounds, int) { walked = true })
	if walked {
		t.Error("index should be discarded by reset")
	}

	id, _ := sim.Spawn(physics.Vector2D{X: 50, Y: 50}, physics.Vector2D{}, 5)
	if id != 5 {
		t.Errorf("IDs must not be reused after reset, got %d", id)
	}
}

func TestSimulation_SetMarginFactor(t *testing.T) {
	sim := newTestSimulation(t, testConfig(400, 400, config.StrategyQuadtree))

	if err := sim.SetMarginFactor(0); !errors.Is(err, validation.ErrInvalidMargin) {
		t.Errorf("expected ErrInvalidMargin, got %v", err)
	}
	if err := sim.SetMarginFactor(5); err != nil {
		t.Fatalf("SetMarginFactor: %v", err)
	}
	if sim.MarginFactor() != 5 {
		t.Errorf("MarginFactor() = %v", sim.MarginFactor())
	}
	if d, ok := sim.detector.(*IndexedDetector); !ok || d.MarginFactor != 5 {
		t.Errorf("active detector not updated: %#v", sim.detector)
	}

	sim.ToggleStrategy()
	sim.ToggleStrategy()
	if d := sim.detector.(*IndexedDetector); d.MarginFactor != 5 {
		t.Errorf("margin lost across toggles: %v", d.MarginFactor)
	}
}

func TestSimulation_DropsNonFiniteBodies(t *testing.T) {
	sim := newTestSimulation(t, testConfig(200, 200, config.StrategyQuadtree))
	sim.Spawn(physics.Vector2D{X: 50, Y: 50}, physics.Vector2D{}, 5)
	broken, _ := sim.Spawn(physics.Vector2D{X: 150, Y: 150}, physics.Vector2D{}, 5)
	sim.bodies[1].Velocity = physics.Vector2D{X: math.NaN()}

	var dropped []uint64
	sim.EventBus().Subscribe(event.IndexInsertDropped, func(e event.Event) {
		dropped = append(dropped, e.(*event.DropEvent).BodyID)
	})

	stats := sim.StepFrame(0.1)

	if stats.IndexedBodies != 1 || stats.DroppedBodies != 1 {
		t.Errorf("unexpected index stats %+v", stats)
	}
	if len(dropped) != 1 || dropped[0] != uint64(broken) {
		t.Errorf("expected drop event for body %d, got %v", broken, dropped)
	}
}

func TestSimulation_PublishesEvents(t *testing.T) {
	bus := event.NewEventBus()
	counts := make(map[event.Type]int)
	for _, typ := range []event.Type{
		event.BodySpawned, event.SimulationReset, event.StrategyChanged,
		event.CollisionResolved, event.FrameCompleted,
	} {
		bus.Subscribe(typ, func(e event.Event) { counts[e.GetType()]++ })
	}

	var lastFrame *event.FrameEvent
	bus.Subscribe(event.FrameCompleted, func(e event.Event) { lastFrame = e.(*event.FrameEvent) })

	sim := newTestSimulation(t, testConfig(200, 200, config.StrategyQuadtree), WithEventBus(bus))
	sim.Spawn(physics.Vector2D{X: 100, Y: 100}, physics.Vector2D{}, 10)
	sim.Spawn(physics.Vector2D{X: 110, Y: 100}, physics.Vector2D{}, 10)
	sim.StepFrame(0)
	sim.SetStrategy(Indexed)
	sim.ToggleStrategy()
	sim.ResetAll()

	want := map[event.Type]int{
		event.BodySpawned:       2,
		event.CollisionResolved: 1,
		event.FrameCompleted:    1,
		event.StrategyChanged:   1,
		event.SimulationReset:   1,
	}
	for typ, n := range want {
		if counts[typ] != n {
			t.Errorf("%s published %d times, want %d", typ, counts[typ], n)
		}
	}
	if lastFrame == nil || lastFrame.Collisions != 1 || lastFrame.Strategy != "quadtree" {
		t.Errorf("unexpected frame event %+v", lastFrame)
	}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func BenchmarkSimulation_StepFrame(b *testing.B) {
	for _, strategy := range []string{config.StrategyBruteForce, config.StrategyQuadtree} {
		b.Run(strategy, func(b *testing.B) {
			cfg := config.DefaultConfig()
			cfg.Detection.Strategy = strategy
			cfg.Seed.Count = 500
			cfg.Seed.RandomSeed = 1
			sim, err := NewSimulation(cfg)
			if err != nil {
				b.Fatal(err)
			}
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				sim.StepFrame(1.0 / 60.0)
			}
		})
	}
}
