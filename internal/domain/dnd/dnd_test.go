package dnd_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kantai-tool/fleetdeck/internal/domain/dnd"
	"github.com/kantai-tool/fleetdeck/internal/domain/fleet"
)

func TestParsePayload(t *testing.T) {
	p, err := dnd.ParsePayload(dnd.UnitID(42))
	require.NoError(t, err)
	assert.Equal(t, dnd.Payload{Kind: dnd.PayloadUnit, ID: 42}, p)

	p, err = dnd.ParsePayload("master-131")
	require.NoError(t, err)
	assert.Equal(t, dnd.Payload{Kind: dnd.PayloadCatalog, ID: 131}, p)

	for _, id := range []string{"ship-", "ship-x", "master-0", "slot-1-2"} {
		_, err := dnd.ParsePayload(id)
		var pErr *dnd.ParseError
		assert.True(t, errors.As(err, &pErr), id)
	}
	_, err = dnd.ParsePayload("other")
	assert.True(t, errors.Is(err, dnd.ErrUnrecognizedID))
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		id   string
		want dnd.Target
	}{
		{"slot-1-0-3", dnd.Target{Kind: dnd.TargetSlot, Slot: fleet.Coordinate{Deck: 1, Section: fleet.SectionMain, Slot: 3}}},
		{"slot-0-1-5", dnd.Target{Kind: dnd.TargetSlot, Slot: fleet.Coordinate{Deck: 0, Section: fleet.SectionEscort, Slot: 5}}},
		{"slot-2-4", dnd.Target{Kind: dnd.TargetSlot, Slot: fleet.Coordinate{Deck: 2, Section: fleet.SectionMain, Slot: 4}}},
		{"bonus-group-abc-123", dnd.Target{Kind: dnd.TargetBonusGroup, GroupID: "abc-123"}},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := dnd.ParseTarget(tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, id := range []string{"slot-1", "slot-a-b", "slot-1-2-3-4", "slot--1-2", "bonus-group-", "deck-1"} {
		_, err := dnd.ParseTarget(id)
		var pErr *dnd.ParseError
		assert.True(t, errors.As(err, &pErr), id)
	}
}

func TestSlotID_RoundTrip(t *testing.T) {
	at := fleet.Coordinate{Deck: 3, Section: fleet.SectionEscort, Slot: 2}

	got, err := dnd.ParseTarget(dnd.SlotID(at))

	require.NoError(t, err)
	assert.Equal(t, at, got.Slot)
}

func TestSensor_ClickDoesNotDrag(t *testing.T) {
	s := dnd.NewSensor(0)
	s.Press("ship-1", dnd.Point{X: 10, Y: 10})

	assert.False(t, s.Move(dnd.Point{X: 14, Y: 13}), "distance 5 is below activation")
	assert.Equal(t, dnd.StatePending, s.State())

	_, ok := s.Release("slot-0-0-0")
	assert.False(t, ok)
	assert.Equal(t, dnd.StateIdle, s.State())
}

func TestSensor_DragAndDrop(t *testing.T) {
	s := dnd.NewSensor(dnd.DefaultActivationDistance)
	s.Press("ship-1", dnd.Point{})

	assert.True(t, s.Move(dnd.Point{X: 8}))
	assert.True(t, s.Move(dnd.Point{X: 1}), "stays dragging once activated")

	drop, ok := s.Release("slot-0-0-2")
	require.True(t, ok)
	assert.Equal(t, dnd.Drop{ActiveID: "ship-1", OverID: "slot-0-0-2"}, drop)
	assert.Empty(t, s.Active())
}

func TestSensor_ReleaseOutsideAndCancel(t *testing.T) {
	s := dnd.NewSensor(8)

	s.Press("ship-1", dnd.Point{})
	s.Move(dnd.Point{X: 20, Y: 20})
	_, ok := s.Release("")
	assert.False(t, ok)

	s.Press("ship-1", dnd.Point{})
	s.Move(dnd.Point{X: 20, Y: 20})
	s.Cancel()
	_, ok = s.Release("slot-0-0-0")
	assert.False(t, ok)
}

func TestSensor_DisabledDraggableNeverArms(t *testing.T) {
	s := dnd.NewSensor(0)
	s.Disabled = func(id string) bool { return id == "ship-7" }

	assert.False(t, s.Press("ship-7", dnd.Point{}))
	assert.False(t, s.Move(dnd.Point{X: 50}))
	_, ok := s.Release("slot-0-0-0")
	assert.False(t, ok)

	assert.True(t, s.Press("ship-8", dnd.Point{}))
	assert.Equal(t, dnd.StatePending, s.State())
}
