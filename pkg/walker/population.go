package walker

import (
	"context"
	"fmt"

	"github.com/opd-ai/go-walker/pkg/event"
	"github.com/opd-ai/go-walker/pkg/logging"
	"github.com/opd-ai/go-walker/pkg/physics"
	"github.com/opd-ai/go-walker/pkg/validation"
)

// Config describes a population run: the arena, the walkers and the laser
// sweeping in from behind them.
type Config struct {
	Size     int
	Lifespan uint64
	Body     Options

	MaxRotation    float64
	MinContactDist float64
	MaxHeight      float64

	GroundY        float64
	GroundWidth    float64
	GroundHeight   float64
	GroundFriction float64

	LaserX      float64
	LaserHeight float64
	// LaserSpeed is the laser's advance per step.
	LaserSpeed float64
}

// DefaultConfig returns the reference arena: fifteen walkers on a long
// ground with the laser starting 200 units behind them.
func DefaultConfig() Config {
	return Config{
		Size:           15,
		Lifespan:       3000,
		Body:           DefaultOptions(),
		MaxRotation:    0.4,
		MinContactDist: 1,
		MaxHeight:      100,
		GroundY:        900,
		GroundWidth:    100000,
		GroundHeight:   50,
		GroundFriction: 0.8,
		LaserX:         200,
		LaserHeight:    900,
		LaserSpeed:     1,
	}
}

// Validate checks c.
func (c Config) Validate() error {
	if err := validation.MinCount("size", c.Size, 1); err != nil {
		return err
	}
	if c.Lifespan == 0 {
		return fmt.Errorf("lifespan = 0: %w", validation.ErrOutOfRange)
	}
	for _, p := range []struct {
		field string
		value float64
	}{
		{"max_rotation", c.MaxRotation},
		{"max_height", c.MaxHeight},
		{"ground_width", c.GroundWidth},
		{"ground_height", c.GroundHeight},
		{"laser_height", c.LaserHeight},
		{"density", c.Body.Density},
		{"head_density", c.Body.HeadDensity},
		{"hinge_radius", c.Body.HingeRadius},
	} {
		if err := validation.Positive(p.field, p.value); err != nil {
			return err
		}
	}
	if err := validation.NonNegative("laser_speed", c.LaserSpeed); err != nil {
		return err
	}
	return validation.Finite("positions", c.GroundY, c.LaserX, c.Body.Start.X, c.Body.Start.Y,
		c.MinContactDist, c.GroundFriction)
}

// GroundTop is the y coordinate of the ground's upper edge.
func (c Config) GroundTop() float64 { return c.GroundY - c.GroundHeight/2 }

// ControllerFactory supplies the controller for walker index in a generation.
type ControllerFactory func(index, generation int) Controller

// Generation summarises one finished generation.
type Generation struct {
	Number      int
	Ticks       uint64
	BestIndex   int
	BestFitness float64
	MeanFitness float64
}

// Population runs generations of walkers in one world. Its Step method is a
// frame hook: each call senses, actuates and limits every living walker,
// advances the laser, and starts a new generation once every walker is dead
// or the lifespan is over.
type Population struct {
	cfg     Config
	world   *physics.World
	factory ControllerFactory
	logger  *logging.Logger

	Ground *physics.Body
	Laser  *physics.Body

	walkers     []*Walker
	controllers []Controller
	counter     uint64
	generation  int
	history     []Generation
}

// NewPopulation adds the ground, the laser and the first generation to w.
func NewPopulation(w *physics.World, cfg Config, factory ControllerFactory, logger *logging.Logger) (*Population, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("walker config: %w", err)
	}
	if factory == nil {
		return nil, fmt.Errorf("walker population: nil controller factory")
	}
	if logger == nil {
		logger = logging.NewLogger()
	}

	groundOpts := physics.DefaultBodyOptions()
	groundOpts.Static = true
	groundOpts.Friction = cfg.GroundFriction
	groundOpts.Label = "ground"
	ground, err := physics.NewRectangle(cfg.Body.Start.X+100, cfg.GroundY, cfg.GroundWidth, cfg.GroundHeight, groundOpts)
	if err != nil {
		return nil, fmt.Errorf("ground: %w", err)
	}

	laserOpts := physics.DefaultBodyOptions()
	laserOpts.Static = true
	laserOpts.Label = "laser"
	laser, err := physics.NewRectangle(cfg.LaserX, cfg.GroundTop()-cfg.LaserHeight/2, 10, cfg.LaserHeight, laserOpts)
	if err != nil {
		return nil, fmt.Errorf("laser: %w", err)
	}
	if err := w.Add(ground, laser); err != nil {
		return nil, err
	}

	p := &Population{
		cfg:        cfg,
		world:      w,
		factory:    factory,
		logger:     logger,
		Ground:     ground,
		Laser:      laser,
		generation: 1,
	}
	if err := p.spawn(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Population) spawn() error {
	p.walkers = p.walkers[:0]
	p.controllers = p.controllers[:0]
	p.Ground.Layers = []physics.Group{0}
	for i := 0; i < p.cfg.Size; i++ {
		wk, err := New(p.world, i, p.cfg.Body)
		if err != nil {
			return err
		}
		p.Ground.Layers = append(p.Ground.Layers, wk.Layer)
		p.walkers = append(p.walkers, wk)
		p.controllers = append(p.controllers, p.factory(i, p.generation))
	}
	return nil
}

// Walkers returns the current generation.
func (p *Population) Walkers() []*Walker { return p.walkers }

// Generation returns the number of the running generation, starting at 1.
func (p *Population) Generation() int { return p.generation }

// Counter returns the steps run in the current generation.
func (p *Population) Counter() uint64 { return p.counter }

// History returns the summaries of finished generations.
func (p *Population) History() []Generation { return p.history }

// Alive counts the living walkers.
func (p *Population) Alive() int {
	n := 0
	for _, wk := range p.walkers {
		if !wk.Dead {
			n++
		}
	}
	return n
}

// Leader returns the living walker with the highest fitness, or nil when
// every walker is dead.
func (p *Population) Leader() *Walker {
	var best *Walker
	for _, wk := range p.walkers {
		if wk.Dead {
			continue
		}
		if best == nil || wk.Fitness() > best.Fitness() {
			best = wk
		}
	}
	return best
}

func (p *Population) sensorOptions() SensorOptions {
	return SensorOptions{
		GroundTop:      p.cfg.GroundTop(),
		MinContactDist: p.cfg.MinContactDist,
		MaxHeight:      p.cfg.MaxHeight,
		MaxRotation:    p.cfg.MaxRotation,
	}
}

// Step advances the population by one simulation tick.
func (p *Population) Step(w *physics.World, tick uint64) error {
	if w != p.world {
		return fmt.Errorf("walker population: %w", physics.ErrForeignItem)
	}
	opts := p.sensorOptions()
	for i, wk := range p.walkers {
		if wk.Dead {
			continue
		}
		if wk.CheckDeath(p.Ground, p.Laser) {
			w.Events.Publish(event.NewWalkerEvent(p, wk.Index, wk.Fitness(), wk.Cause))
			continue
		}
		wk.Actuate(p.controllers[i].Actuate(tick, wk.Sense(opts)), p.cfg.MaxRotation)
		wk.ConstrainJoints()
	}

	p.counter++
	laserAt := physics.Vec(p.cfg.LaserX+float64(p.counter)*p.cfg.LaserSpeed, p.Laser.Position().Y)
	p.Laser.SetPosition(laserAt, false)

	if p.Alive() == 0 || p.counter >= p.cfg.Lifespan {
		return p.nextGeneration()
	}
	return nil
}

func (p *Population) nextGeneration() error {
	result := Generation{Number: p.generation, Ticks: p.counter, BestIndex: -1}
	sum := 0.0
	for i, wk := range p.walkers {
		f := wk.Fitness()
		sum += f
		if result.BestIndex < 0 || f > result.BestFitness {
			result.BestIndex, result.BestFitness = i, f
		}
	}
	result.MeanFitness = sum / float64(len(p.walkers))
	p.history = append(p.history, result)

	p.logger.Info(context.Background(), "generation finished",
		"generation", result.Number,
		"ticks", result.Ticks,
		"best_fitness", result.BestFitness,
		"mean_fitness", result.MeanFitness,
	)

	for _, wk := range p.walkers {
		wk.Remove(p.world)
	}
	p.generation++
	p.counter = 0
	p.Laser.SetPosition(physics.Vec(p.cfg.LaserX, p.Laser.Position().Y), false)
	return p.spawn()
}
