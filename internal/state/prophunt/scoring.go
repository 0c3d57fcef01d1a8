package prophunt

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/event"
)

// accumulateSleepingSeconds credits every sleeping prop with dt seconds
// toward its SS scoring component (spec §4.F "Scoring ... sleeping-seconds
// x SS").
func (m *Machine) accumulateSleepingSeconds(dt float64) {
	for _, p := range m.players() {
		if p.Player == nil || !p.Player.IsProp() || p.Body == nil {
			continue
		}
		if p.Sleeping() {
			p.Player.Score.SleepingSeconds += dt
		}
	}
}

func (m *Machine) endGame(propsWin bool) {
	entries := m.computeScoreboard(propsWin)
	m.emit(event.Global(event.KindScoreboardUpdate, event.ScoreboardUpdatePayload{
		PropsWin:        propsWin,
		DurationSeconds: huntingSeconds - math.Max(m.Timer, 0),
		Entries:         entries,
	}))
	m.Phase = PhasePostGame
	m.Timer = 0
}

type scoreRow struct {
	player *entity.Entity
	lines  []event.ScoreLine
	total  float64
}

// computeScoreboard computes the per-player score breakdown and assigns
// placement bonuses by sorted final score (spec §4.F "Scoring").
func (m *Machine) computeScoreboard(propsWin bool) []event.ScoreboardEntry {
	w := m.Config.Scoring
	var rows []scoreRow

	for _, p := range m.players() {
		if p.Player == nil {
			continue
		}

		var lines []event.ScoreLine
		var components []float64
		var isWinner bool

		switch {
		case p.Player.IsHunter():
			isWinner = !propsWin
			s := p.Player.Score
			kills := float64(s.KilledPlayers) * w.KillWeight
			hits := float64(s.Hits) * w.HitWeight
			hitRate := s.HitRate() * w.HitRateWeight
			lines = []event.ScoreLine{
				{Label: "kills", Value: kills},
				{Label: "hits", Value: hits},
				{Label: "hit-rate", Value: hitRate},
			}
			components = []float64{kills, hits, hitRate}
		case p.Player.IsProp():
			isWinner = propsWin
			s := p.Player.Score
			health := p.Health() * w.HealthWeight
			pings := float64(s.Pings) * w.PingWeight
			volumePings := s.CumulativeVolumePing * w.VolumePingWeight
			sleeping := s.SleepingSeconds * w.SleepingWeight
			lines = []event.ScoreLine{
				{Label: "health", Value: health},
				{Label: "pings", Value: pings},
				{Label: "volume-pings", Value: volumePings},
				{Label: "sleeping", Value: sleeping},
			}
			components = []float64{health, pings, volumePings, sleeping}
		default:
			continue
		}

		if isWinner {
			lines = append(lines, event.ScoreLine{Label: "team-bonus", Value: w.TeamBonus})
			components = append(components, w.TeamBonus)
		}

		rows = append(rows, scoreRow{player: p, lines: lines, total: floats.Sum(components)})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].total > rows[j].total })
	for i := range rows {
		if i >= len(w.PlacementBonuses) {
			break
		}
		bonus := w.PlacementBonuses[i]
		rows[i].lines = append(rows[i].lines, event.ScoreLine{Label: placementLabel(i), Value: bonus})
		rows[i].total += bonus
	}

	entries := make([]event.ScoreboardEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, event.ScoreboardEntry{
			PlayerID: r.player.ID,
			Username: r.player.Player.Username,
			Lines:    r.lines,
			Total:    r.total,
		})
	}
	return entries
}

func placementLabel(i int) string {
	switch i {
	case 0:
		return "placement-1st"
	case 1:
		return "placement-2nd"
	case 2:
		return "placement-3rd"
	default:
		return "placement"
	}
}
