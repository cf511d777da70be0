package dnd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kantai-tool/fleetdeck/internal/domain/fleet"
)

const (
	unitPrefix    = "ship-"
	catalogPrefix = "master-"
	slotPrefix    = "slot-"
	groupPrefix   = "bonus-group-"
)

// ErrUnrecognizedID is returned when an id carries none of the known prefixes
var ErrUnrecognizedID = errors.New("unrecognized drag id")

// ParseError describes a drag or drop id that could not be decoded
type ParseError struct {
	ID     string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("drag id %q: %s", e.ID, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// PayloadKind tells what is being dragged
type PayloadKind int

const (
	// PayloadUnit is an owned roster unit (instance id)
	PayloadUnit PayloadKind = iota + 1
	// PayloadCatalog is a catalog entry (reference id), used for bonus tagging
	PayloadCatalog
)

// Payload is a decoded draggable id
type Payload struct {
	Kind PayloadKind
	ID   int
}

// TargetKind tells what the pointer was released over
type TargetKind int

const (
	TargetSlot TargetKind = iota + 1
	TargetBonusGroup
)

// Target is a decoded droppable id
type Target struct {
	Kind    TargetKind
	Slot    fleet.Coordinate
	GroupID string
}

// UnitID builds the draggable id of a roster unit
func UnitID(instanceID int) string {
	return unitPrefix + strconv.Itoa(instanceID)
}

// CatalogID builds the draggable id of a catalog entry
func CatalogID(referenceID int) string {
	return catalogPrefix + strconv.Itoa(referenceID)
}

// SlotID builds the droppable id of a formation slot
func SlotID(at fleet.Coordinate) string {
	return fmt.Sprintf("%s%d-%d-%d", slotPrefix, at.Deck, int(at.Section), at.Slot)
}

// GroupID builds the droppable id of a bonus group
func GroupID(groupID string) string {
	return groupPrefix + groupID
}

// ParsePayload decodes a draggable id
func ParsePayload(id string) (Payload, error) {
	switch {
	case strings.HasPrefix(id, unitPrefix):
		n, err := positive(id, strings.TrimPrefix(id, unitPrefix))
		if err != nil {
			return Payload{}, err
		}
		return Payload{Kind: PayloadUnit, ID: n}, nil
	case strings.HasPrefix(id, catalogPrefix):
		n, err := positive(id, strings.TrimPrefix(id, catalogPrefix))
		if err != nil {
			return Payload{}, err
		}
		return Payload{Kind: PayloadCatalog, ID: n}, nil
	}
	return Payload{}, &ParseError{ID: id, Reason: "not a unit or catalog id", Err: ErrUnrecognizedID}
}

// ParseTarget decodes a droppable id. The two-part slot form predates combined
// formations and addresses section 0.
func ParseTarget(id string) (Target, error) {
	switch {
	case strings.HasPrefix(id, groupPrefix):
		g := strings.TrimPrefix(id, groupPrefix)
		if g == "" {
			return Target{}, &ParseError{ID: id, Reason: "empty group id"}
		}
		return Target{Kind: TargetBonusGroup, GroupID: g}, nil
	case strings.HasPrefix(id, slotPrefix):
		parts := strings.Split(strings.TrimPrefix(id, slotPrefix), "-")
		nums := make([]int, len(parts))
		for i, p := range parts {
			n, err := strconv.Atoi(p)
			if err != nil || n < 0 {
				return Target{}, &ParseError{ID: id, Reason: "slot coordinates must be non-negative integers", Err: err}
			}
			nums[i] = n
		}
		switch len(nums) {
		case 2:
			return Target{Kind: TargetSlot, Slot: fleet.Coordinate{Deck: nums[0], Section: fleet.SectionMain, Slot: nums[1]}}, nil
		case 3:
			return Target{Kind: TargetSlot, Slot: fleet.Coordinate{Deck: nums[0], Section: fleet.Section(nums[1]), Slot: nums[2]}}, nil
		}
		return Target{}, &ParseError{ID: id, Reason: fmt.Sprintf("expected 2 or 3 coordinates, got %d", len(nums))}
	}
	return Target{}, &ParseError{ID: id, Reason: "not a slot or bonus group id", Err: ErrUnrecognizedID}
}

func positive(id, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ParseError{ID: id, Reason: "id is not a number", Err: err}
	}
	if n <= 0 {
		return 0, &ParseError{ID: id, Reason: "id must be positive"}
	}
	return n, nil
}
