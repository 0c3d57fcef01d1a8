package prophunt

import (
	"math"

	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/event"
)

// nextPingDelayMS draws a prop's next-ping delay from the volume-dependent
// range (spec §3 "Prop sub-state", §8 "end-to-end scenario 3").
func (m *Machine) nextPingDelayMS(p *entity.Entity) int64 {
	cfg := m.Config.Player.PingDelay
	v := p.Body.Volume()
	cubeRoot := math.Cbrt(v)

	low := math.Max(float64(cfg.MinMS), cubeRoot*cfg.VolumeCoeffLow+cfg.BaseLowMS)
	high := math.Max(low, cubeRoot*cfg.VolumeCoeffHigh+cfg.BaseHighMS)

	delay := low + m.rng.Float64()*(high-low)
	return int64(delay)
}

// updatePings broadcasts a ping and reschedules it for every prop whose
// next-ping time has arrived (spec §4.F "Ping (props)").
func (m *Machine) updatePings(nowMS int64) {
	for _, p := range m.players() {
		if p.Player == nil || !p.Player.IsProp() {
			continue
		}
		if nowMS < p.Player.Prop.NextPingAtMS {
			continue
		}

		pos := p.Position()
		m.emit(event.AtPosition(event.KindPing, pos, event.PingPayload{EntityID: p.ID, Point: pos}))

		p.Player.Prop.LastPingMS = nowMS
		p.Player.Prop.NextPingAtMS = nowMS + m.nextPingDelayMS(p)
		p.Player.Score.Pings++
		p.Player.Score.CumulativeVolumePing += p.Body.Volume()
	}
}
