package prophunt

import (
	"math/rand"
	"testing"
	"time"

	"github.com/outpost-games/hideforge/internal/config"
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/geometry"
)

func testConfig() *config.Config {
	return &config.Config{
		Gravity:   9.8,
		MapSize:   500,
		ViewRange: 100,
		Player: config.PlayerTuning{
			MoveSpeed:        5,
			SprintSpeed:      8,
			StaminaDrainRate: 0.2,
			StaminaRegenRate: 0.1,
			JumpVelocity:     6,
			ShootPos:         geometry.Vec3{Y: 1.6},
			ShootCooldownMS:  500,
			PingDelay: config.PingDelayRange{
				MinMS:           3000,
				VolumeCoeffLow:  800,
				VolumeCoeffHigh: 1500,
				BaseLowMS:       2000,
				BaseHighMS:      4000,
			},
		},
		Scoring: config.ScoringWeights{
			KillWeight:       10,
			HitWeight:        2,
			HitRateWeight:    5,
			HealthWeight:     3,
			PingWeight:       1,
			VolumePingWeight: 0.5,
			SleepingWeight:   0.1,
			TeamBonus:        25,
			PlacementBonuses: []float64{30, 20, 10},
		},
		Prefabs: []config.Prefab{
			{ID: "default-character", Kind: config.PrefabKindProp, Health: 1,
				Rects: []geometry.Rect{{HalfSize: geometry.Vec3{X: 0.5, Y: 0.5, Z: 1}}}},
			{ID: "crate", Kind: config.PrefabKindFixture, Health: 4, Asset: "crate.glb",
				Rects: []geometry.Rect{{HalfSize: geometry.Vec3{X: 1, Y: 1, Z: 1}}}},
		},
		Maps: map[string]config.MapDef{
			"warehouse": {
				Root: config.MapNode{
					Type: config.NodeObject,
					PrefabID: "crate",
					Offset:   geometry.Vec3{X: 5},
				},
			},
		},
	}
}

func newTestMachine() *Machine {
	return New(testConfig(), "warehouse", entity.NewIDAllocator(), rand.New(rand.NewSource(1)))
}

func joinN(t *testing.T, m *Machine, n int) []entity.ID {
	t.Helper()
	var ids []entity.ID
	for i := 0; i < n; i++ {
		id, err := m.Join("player", "default-character")
		if err != nil {
			t.Fatalf("join: %v", err)
		}
		ids = append(ids, *id)
	}
	return ids
}

// TestHidingRequiresFourPlayers covers spec §8 "Game state (a)".
func TestHidingRequiresFourPlayers(t *testing.T) {
	m := newTestMachine()
	joinN(t, m, 3)

	m.Tick(10*time.Second, 10_000)
	if m.Phase != PhasePreGame {
		t.Fatalf("expected to stay in pre-game with 3 players, got %v", m.Phase)
	}
	if m.Timer != preGameSeconds {
		t.Fatalf("expected timer reset to %v, got %v", preGameSeconds, m.Timer)
	}
}

func TestHidingBeginsAtFourPlayers(t *testing.T) {
	m := newTestMachine()
	joinN(t, m, 4)

	m.Tick(10*time.Second, 10_000)
	if m.Phase != PhaseHiding {
		t.Fatalf("expected hiding to begin with 4 players, got %v", m.Phase)
	}

	hunters, props := m.countHuntersProps()
	if hunters == 0 {
		t.Fatal("expected at least one hunter after bucketing")
	}
	if hunters+props != 4 {
		t.Fatalf("expected every player bucketed, got %d hunters + %d props", hunters, props)
	}
}

// TestPinHuntersDuringHiding covers spec §8 "Game state (b)".
func TestPinHuntersDuringHiding(t *testing.T) {
	m := newTestMachine()
	joinN(t, m, 4)
	m.Tick(10*time.Second, 10_000)
	if m.Phase != PhaseHiding {
		t.Fatalf("expected hiding, got %v", m.Phase)
	}

	for _, p := range m.players() {
		if p.Player.IsHunter() {
			p.Body.SetPosition(geometry.Vec3{X: 999})
		}
	}
	m.Tick(66*time.Millisecond, 10_066)

	for _, p := range m.players() {
		if p.Player.IsHunter() && p.Body.Position() != p.Player.SpawnAnchor {
			t.Fatalf("expected hunter pinned to spawn anchor, got %v want %v", p.Body.Position(), p.Player.SpawnAnchor)
		}
	}
}

// TestEndConditionPropsWinWhenNoHunters covers spec §8 "Game state (c)".
func TestEndConditionPropsWinWhenNoHunters(t *testing.T) {
	m := newTestMachine()
	joinN(t, m, 4)
	m.Tick(10*time.Second, 0)
	m.Tick(15*time.Second, 10_000)
	if m.Phase != PhaseHunting {
		t.Fatalf("expected hunting, got %v", m.Phase)
	}

	for _, p := range m.players() {
		if p.Player.IsHunter() {
			p.Player.BecomeProp(0)
		}
	}

	m.Tick(66*time.Millisecond, 25_000)
	if m.Phase != PhasePostGame {
		t.Fatalf("expected post-game once no hunters remain, got %v", m.Phase)
	}
}

// TestShootDealsDamageAndKills exercises end-to-end scenario 1.
func TestShootDealsDamageAndKills(t *testing.T) {
	m := newTestMachine()
	ids := joinN(t, m, 1)
	hunter, _ := m.World.Tree.Get(ids[0])
	hunter.Player.BecomeHunter()
	hunter.Body.SetPosition(geometry.Vec3{})
	m.Phase = PhaseHunting

	propID, err := m.Join("prop", "default-character")
	if err != nil {
		t.Fatalf("join prop: %v", err)
	}
	prop, _ := m.World.Tree.Get(*propID)
	prop.Player.BecomeProp(0)
	prop.Body.SetPosition(geometry.Vec3{X: 5})

	if err := m.HandleShoot(ids[0], geometry.Vec3{X: 5}, 10_000, false); err != nil {
		t.Fatalf("HandleShoot: %v", err)
	}
	if prop.Health() != 1.0 {
		t.Fatalf("expected the killed prop respawned at full health, got health %v", prop.Health())
	}
	if !prop.Player.IsHunter() {
		t.Fatal("expected killed prop to respawn as a hunter")
	}
	if hunter.Player.Score.KilledPlayers != 1 {
		t.Fatalf("expected shooter credited with a kill, got %v", hunter.Player.Score.KilledPlayers)
	}

	events := m.DrainEvents()
	if len(events) < 2 {
		t.Fatalf("expected shoot and player-death events, got %d", len(events))
	}
}

// TestScoreComputesPlacementBonus exercises spec §4.F "Scoring".
func TestScoreComputesPlacementBonus(t *testing.T) {
	m := newTestMachine()
	ids := joinN(t, m, 2)
	hunter, _ := m.World.Tree.Get(ids[0])
	hunter.Player.BecomeHunter()
	hunter.Player.Score.KilledPlayers = 2

	prop, _ := m.World.Tree.Get(ids[1])
	prop.Player.BecomeProp(0)

	entries := m.computeScoreboard(false)
	if len(entries) != 2 {
		t.Fatalf("expected 2 scoreboard entries, got %d", len(entries))
	}
	if entries[0].PlayerID != hunter.ID {
		t.Fatalf("expected the hunter (higher score) to place first, got %v", entries[0].PlayerID)
	}
	foundPlacement := false
	for _, l := range entries[0].Lines {
		if l.Label == "placement-1st" {
			foundPlacement = true
			if l.Value != 30 {
				t.Fatalf("expected first-place bonus 30, got %v", l.Value)
			}
		}
	}
	if !foundPlacement {
		t.Fatal("expected a placement-1st line on the top scorer")
	}
}
