package entity

import (
	"math"

	"github.com/Carmen-Shannon/tm3d-go/common"
)

// Movement tuning for the guy, in units and degrees per second.
const (
	GuyRunSpeed      = 20.0
	GuyTurnSpeed     = 160.0
	GuyGravity       = -50.0
	GuyJumpPower     = 30.0
	GuyTerrainHeight = 0.0
)

// Keys reports held keys. engine/input.Input satisfies it.
type Keys interface {
	IsDown(keyCode uint32) bool
}

// Guy is the player-controlled entity. W and S run along the heading, A and D turn, Space jumps.
type Guy interface {
	Entity

	// InAir reports whether the guy is above the ground.
	InAir() bool

	// Update advances the guy by one simulation step.
	//
	// Parameters:
	//   - keys: held key state, nil for no input
	//   - dt: the simulation step in seconds
	Update(keys Keys, dt float32)
}

type guy struct {
	*entity

	speed     float32
	turnSpeed float32
	upwards   float32
	inAir     bool
}

var _ Guy = &guy{}

// NewGuy creates the player entity.
//
// Parameters:
//   - options: functional options to configure the underlying entity
//
// Returns:
//   - Guy: the newly created guy
func NewGuy(options ...EntityBuilderOption) Guy {
	return &guy{entity: newEntity(options...)}
}

func (g *guy) InAir() bool {
	return g.inAir
}

func (g *guy) Update(keys Keys, dt float32) {
	isDown := func(key uint32) bool { return keys != nil && keys.IsDown(key) }

	switch {
	case isDown(common.KeyW):
		g.speed = -GuyRunSpeed
	case isDown(common.KeyS):
		g.speed = GuyRunSpeed
	default:
		g.speed = 0
	}

	switch {
	case isDown(common.KeyD):
		g.turnSpeed = -GuyTurnSpeed
	case isDown(common.KeyA):
		g.turnSpeed = GuyTurnSpeed
	default:
		g.turnSpeed = 0
	}

	if isDown(common.KeySpace) && !g.inAir {
		g.upwards = GuyJumpPower
		g.inAir = true
	}

	g.rotation.Y += g.turnSpeed * dt
	distance := g.speed * dt
	heading := float64(common.DegreesToRadians(g.rotation.Y))
	g.position.X += distance * float32(math.Sin(heading))
	g.position.Z += distance * float32(math.Cos(heading))

	g.upwards += GuyGravity * dt
	g.position.Y += g.upwards * dt
	if g.position.Y < GuyTerrainHeight {
		g.upwards = 0
		g.position.Y = GuyTerrainHeight
		g.inAir = false
	}
}
