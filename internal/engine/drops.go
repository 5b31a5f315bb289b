package engine

import (
	"fmt"

	"dtnsim/internal/agent"
	"dtnsim/internal/bundlemodel"
	"dtnsim/internal/geometry"
)

// dataDropSpec is one entry of a model's data_drop_schedule, converted
// from config.DataDropConfig at build time.
type dataDropSpec struct {
	ID       string
	Pos      geometry.Position
	TargetID string
	Schedule dropSchedule
}

// dropSchedule governs when a dataDropSpec materializes a live drop: once
// at Time if RepeatEvery is zero, or repeatedly every RepeatEvery ticks
// starting at Time until Until (when HasUntil is set).
type dropSchedule struct {
	Time        int64
	RepeatEvery int64
	Until       int64
	HasUntil    bool
}

// dataDrop is a single materialized, not-yet-picked-up ground drop.
type dataDrop struct {
	ID       string
	Pos      geometry.Position
	TargetID string
}

// materializeDrops turns any schedule entries firing this tick into live
// drops available for pickup.
func (s *Simulation) materializeDrops() {
	for _, spec := range s.dropSchedules {
		if !scheduleFiresAt(spec.Schedule, s.now) {
			continue
		}
		s.activeDrops = append(s.activeDrops, dataDrop{
			ID:       fmt.Sprintf("%s@%d", spec.ID, s.now),
			Pos:      spec.Pos,
			TargetID: spec.TargetID,
		})
	}
}

func scheduleFiresAt(sch dropSchedule, now int64) bool {
	if now < sch.Time {
		return false
	}
	if sch.RepeatEvery <= 0 {
		return now == sch.Time
	}
	if sch.HasUntil && now > sch.Until {
		return false
	}
	return (now-sch.Time)%sch.RepeatEvery == 0
}

// pickupDrops delivers each active drop to the first non-target client
// that comes within DropPickupRange, queuing a ClientPayload addressed to
// the drop's target for eventual handshake delivery.
func (s *Simulation) pickupDrops() {
	var remaining []dataDrop
	for _, d := range s.activeDrops {
		picked := false
		for _, a := range s.agents {
			if a.Kind != agent.KindClient || a.ID == d.TargetID {
				continue
			}
			if geometry.Distance(a.Pos, d.Pos) > DropPickupRange {
				continue
			}
			payload := &bundlemodel.ClientPayload{
				DropID:       d.ID,
				SourceClient: a.ID,
				DestClient:   d.TargetID,
				CreationTS:   s.now,
				ExpirationTS: s.now + s.payloadLifespan,
			}
			a.Client.PayloadsToSend = append(a.Client.PayloadsToSend, payload)
			s.results.NumPickedUpFromGround++
			picked = true
			break
		}
		if !picked {
			remaining = append(remaining, d)
		}
	}
	s.activeDrops = remaining
}
