package prophunt

import (
	"math"

	"github.com/outpost-games/hideforge/internal/apperr"
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/event"
	"github.com/outpost-games/hideforge/internal/geometry"
)

// rayLength is the fixed cast distance for every shot (spec §4.F "Shooting").
const rayLength = 1000.0

// rotateZ rotates v by radians about the Z axis. Player facing is a
// continuous angle (unlike body-rect rotation, which is quarter-turn only),
// so this is plain trigonometry rather than geometry.Rotation.
func rotateZ(v geometry.Vec3, radians float64) geometry.Vec3 {
	cos, sin := math.Cos(radians), math.Sin(radians)
	return geometry.Vec3{X: v.X*cos - v.Y*sin, Y: v.X*sin + v.Y*cos, Z: v.Z}
}

func normalize(v geometry.Vec3) geometry.Vec3 {
	mag := v.Magnitude()
	if mag == 0 {
		return v
	}
	return v.Scale(1 / mag)
}

// HandleShoot resolves a shoot action: casting a ray from the shooter's
// shoot-pos offset toward target, and damaging whatever it hits (spec §4.F
// "Shooting"). target is the world point the client aimed at (wire tag 5
// shoot(target-vec3)); the ray's direction is target minus the computed
// origin.
func (m *Machine) HandleShoot(shooterID entity.ID, target geometry.Vec3, nowMS int64, admin bool) error {
	if m.Phase != PhaseHunting {
		return apperr.NewDomain("shoot-too-early")
	}

	shooter, ok := m.World.Tree.Get(shooterID)
	if !ok || shooter.Player == nil || shooter.Body == nil {
		return apperr.NewDomain("wrong-kind")
	}
	if !shooter.Player.IsHunter() {
		return apperr.NewDomain("wrong-kind")
	}
	if !admin && nowMS < shooter.Player.Hunter.LastShotMS+m.Config.Player.ShootCooldownMS {
		return apperr.NewDomain("shoot-too-early")
	}
	shooter.Player.Hunter.LastShotMS = nowMS
	shooter.Player.Score.ShotsFired++

	origin := shooter.Position().Add(rotateZ(m.Config.Player.ShootPos, shooter.FacingDir()))
	direction := normalize(target.Sub(origin))
	ray := geometry.Ray{Origin: origin, Direction: direction, Length: rayLength}

	hit, t, found := m.World.Tree.RayCast(ray, func(e *entity.Entity) bool { return e.ID != shooterID })

	end := ray.PointAt(rayLength)
	if found {
		end = ray.PointAt(t)
	}
	m.emit(event.AtPosition(event.KindShoot, origin, event.ShootPayload{
		ShooterID: shooterID,
		Start:     origin,
		End:       end,
	}))

	if !found {
		return nil
	}

	prefab, hasPrefab := m.Config.PrefabByID(hit.PrefabID)
	if !hasPrefab || prefab.Health <= 0 {
		return nil
	}
	damage := 1 / prefab.Health

	if hit.Kind != entity.KindPlayer || hit.Player == nil || !hit.Player.IsProp() {
		return nil
	}

	shooter.Player.Score.Hits++
	hit.SetHealth(hit.Health() - damage)
	if !hit.IsDead() {
		return nil
	}

	shooter.Player.Score.KilledPlayers++
	m.respawnAsHunter(hit)
	m.emit(event.Global(event.KindPlayerDeath, event.PlayerDeathPayload{VictimID: hit.ID, KillerID: shooterID}))
	return nil
}

// respawnAsHunter revives a killed prop as a full-health hunter back on the
// spawn ring (spec §4.F "the killed player is respawned as a hunter at full
// health").
func (m *Machine) respawnAsHunter(p *entity.Entity) {
	p.SetHealth(1.0)
	p.Player.BecomeHunter()
	anchor := m.spawnRingPoint()
	p.Player.SpawnAnchor = anchor
	p.Body.SetPosition(anchor)
	p.Body.SetVelocity(geometry.Vec3{})
}
