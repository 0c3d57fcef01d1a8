package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/outpost-games/hideforge/internal/geometry"
)

const validDoc = `
gravity: 9.8
mapSize: 500
viewRange: 100
player:
  moveSpeed: 5
  sprintSpeed: 8
  staminaDrainRate: 0.2
  staminaRegenRate: 0.1
  jumpVelocity: 6
  shootPos:
    x: 0
    y: 1.6
    z: 0
  shootCooldownMs: 500
  pingDelay:
    minMs: 3000
    volumeCoeffLow: 800
    volumeCoeffHigh: 1500
    baseLowMs: 2000
    baseHighMs: 4000
scoring:
  killWeight: 10
  hitWeight: 2
  hitRateWeight: 5
  healthWeight: 3
  pingWeight: 1
  volumePingWeight: 0.5
  sleepingWeight: 0.1
  teamBonus: 25
  placementBonuses: [30, 20, 10]
prefabs:
  - id: crate
    kind: prop
    health: 4
    asset: crate.glb
    rects:
      - offset: {x: 0, y: 0, z: 0}
        halfSize: {x: 1, y: 1, z: 1}
    minimapColor: "#ff0000"
maps:
  warehouse:
    root:
      type: group
      offset: {x: 0, y: 0, z: 0}
      children:
        - type: object
          prefabId: crate
          offset: {x: 5, y: 0, z: 0}
          rotation: 1
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "game-config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}
	return path
}

func TestLoadValidDocument(t *testing.T) {
	path := writeTemp(t, validDoc)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MapSize != 500 {
		t.Fatalf("expected mapSize 500, got %v", cfg.MapSize)
	}
	if _, ok := cfg.PrefabByID("crate"); !ok {
		t.Fatal("expected crate prefab to be present")
	}
	if _, ok := cfg.Maps["warehouse"]; !ok {
		t.Fatal("expected warehouse map to be present")
	}
}

func TestLoadRejectsUnknownTopLevelField(t *testing.T) {
	path := writeTemp(t, validDoc+"\nbogusField: true\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an unknown top-level field")
	}
}

func TestExpandMapGroupOffsetAccumulates(t *testing.T) {
	def := MapDef{
		Root: MapNode{
			Type:   NodeGroup,
			Offset: geometry.Vec3{X: 10, Y: 0, Z: 0},
			Children: []MapNode{
				{Type: NodeObject, PrefabID: "crate", Offset: geometry.Vec3{X: 5, Y: 0, Z: 0}, Rotation: 1},
			},
		},
	}
	placed := ExpandMap(def)
	if len(placed) != 1 {
		t.Fatalf("expected 1 placed object, got %d", len(placed))
	}
	if placed[0].Position.X != 15 {
		t.Fatalf("expected group offset to accumulate to x=15, got %v", placed[0].Position.X)
	}
	if placed[0].Rotation != geometry.Rot90 {
		t.Fatalf("expected rotation Rot90, got %v", placed[0].Rotation)
	}
}

func TestExpandBuildingSkipsUnknownTokensAndFlipsEvenColumnOddRow(t *testing.T) {
	def := MapDef{
		Root: MapNode{
			Type: NodeBuilding,
			Building: &Building{
				RoomWidth:  4,
				RoomHeight: 2,
				Lookup:     map[string]string{"c": "crate"},
				Rows: []string{
					"c0--", // row 0: col0=crate rot0, col1=empty
					"c0--", // row 1 (odd): col0 (even column) should flip to rot2
				},
			},
		},
	}
	placed := ExpandMap(def)
	if len(placed) != 2 {
		t.Fatalf("expected 2 placed objects (unknown tokens skipped), got %d", len(placed))
	}
	if placed[0].Rotation != geometry.Rot0 {
		t.Fatalf("row 0 should keep base rotation, got %v", placed[0].Rotation)
	}
	if placed[1].Rotation != geometry.Rot180 {
		t.Fatalf("even column of odd row should flip to Rot180, got %v", placed[1].Rotation)
	}
}

func TestExpandBuildingCenteredOffsetsAroundOrigin(t *testing.T) {
	def := MapDef{
		Root: MapNode{
			Type: NodeBuilding,
			Building: &Building{
				RoomWidth:  2,
				RoomHeight: 2,
				Centered:   true,
				Lookup:     map[string]string{"c": "crate"},
				Rows:       []string{"c0"},
			},
		},
	}
	placed := ExpandMap(def)
	if len(placed) != 1 {
		t.Fatalf("expected 1 placed object, got %d", len(placed))
	}
	// A single 2x2 cell, centered: the cell's own centre sits at the origin.
	if placed[0].Position.X != 0 || placed[0].Position.Y != 0 {
		t.Fatalf("expected centered single-cell building at origin, got %v", placed[0].Position)
	}
}
