package game

import (
	"log/slog"

	"github.com/pthm-cable/particlelife/systems"
)

// Respawn deletes every particle and spawns the configured count again,
// cycling through the active colours.
func (g *Game) Respawn() {
	g.store.Clear()
	g.recycleCursor = 0
	g.decayCursor = 0
	g.decayTimer = 0

	n := min(g.config().Particles.Count, g.maxParticles())
	colours := g.model.Colours()
	for i := 0; i < n; i++ {
		g.store.Spawn(g.spawner.Position(g.world), systems.Vec2{}, spawnColour(i, colours))
	}

	g.collector.RecordRespawn()
	slog.Debug("respawned", "particles", n, "colours", colours, "tick", g.tick)
}

// SpawnParticle adds one particle at pos. Once the population cap is
// reached the oldest slot is recycled instead, so the count never grows
// beyond it.
func (g *Game) SpawnParticle(pos systems.Vec2, c systems.Colour) {
	if int(c) >= g.model.Colours() {
		c = spawnColour(int(c), g.model.Colours())
	}
	pos = systems.Wrap(g.world, pos)

	if g.store.Len() < g.maxParticles() {
		g.store.Spawn(pos, systems.Vec2{}, c)
	} else {
		g.store.Replace(g.recycleCursor, pos, systems.Vec2{}, c)
		g.recycleCursor = (g.recycleCursor + 1) % g.store.Len()
	}
	g.collector.RecordSpawn()
}

// maxParticles returns the population cap.
func (g *Game) maxParticles() int {
	return max(g.config().Particles.Max, 1)
}

// updateDecay re-places DecayRate particles per second at random positions,
// round robin over spawn order, in batches every decay interval. This keeps
// settled structures from freezing the world.
func (g *Game) updateDecay(dt float32) {
	cfg := g.config()
	if !cfg.Decay.Enabled || g.store.Len() == 0 || !g.world.Valid() {
		return
	}

	interval := float32(cfg.Decay.Interval)
	if interval <= 0 {
		interval = dt
	}

	g.decayTimer += dt
	if g.decayTimer < interval {
		return
	}
	g.decayTimer -= interval

	g.decayDebt += g.params.DecayRate * interval
	n := int(g.decayDebt)
	g.decayDebt -= float32(n)
	n = min(n, g.store.Len())

	for i := 0; i < n; i++ {
		g.decayCursor %= g.store.Len()
		g.store.Place(g.decayCursor, g.spawner.Position(g.world))
		g.decayCursor++
	}
	if n > 0 {
		g.collector.RecordDecay(n)
	}
}
