package roster

import (
	"encoding/json"
	"strings"

	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
)

// SvdataPrefix is the marker the vendor client puts in front of captured API responses
const SvdataPrefix = "svdata="

// SyntheticIDBase is added to the position of a unit that arrives without an instance id
const SyntheticIDBase = 100000

// ImportResult is the outcome of parsing a pasted roster
type ImportResult struct {
	Units []Unit

	// IDsSynthesized is true when at least one unit had no instance id and was
	// numbered from its position. Existing deck assignments no longer line up
	// with such a roster.
	IDsSynthesized bool
}

// ParseImport parses a raw roster paste.
//
// Accepted shapes (after trimming and stripping an optional "svdata=" prefix):
//   - a bare JSON array of units
//   - an API envelope {"api_data": {"api_ship": [...]}}
//
// Anything else is a *shared.ValidationError and nothing is imported.
func ParseImport(text string) (*ImportResult, error) {
	payload := strings.TrimPrefix(strings.TrimSpace(text), SvdataPrefix)
	if payload == "" {
		return nil, shared.NewValidationError("roster", "input is empty")
	}

	var raw json.RawMessage
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, shared.NewValidationError("roster", "input is not valid JSON")
	}

	var units []Unit
	switch firstByte(raw) {
	case '[':
		if err := json.Unmarshal(raw, &units); err != nil {
			return nil, shared.NewValidationError("roster", "unit list is malformed: "+err.Error())
		}
	case '{':
		var envelope struct {
			APIData *struct {
				APIShip *[]Unit `json:"api_ship"`
			} `json:"api_data"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, shared.NewValidationError("roster", "unit list is malformed: "+err.Error())
		}
		if envelope.APIData == nil || envelope.APIData.APIShip == nil {
			return nil, shared.NewValidationError("roster", "no unit list found (expected an array or api_data.api_ship)")
		}
		units = *envelope.APIData.APIShip
	default:
		return nil, shared.NewValidationError("roster", "no unit list found (expected an array or api_data.api_ship)")
	}

	result := &ImportResult{Units: make([]Unit, len(units))}
	for i, u := range units {
		if u.InstanceID == 0 {
			u.InstanceID = SyntheticIDBase + i
			result.IDsSynthesized = true
		}
		result.Units[i] = u
	}
	return result, nil
}

// DecodeStored decodes the roster document returned by the persistence server.
// An empty document is an empty roster.
func DecodeStored(data []byte) ([]Unit, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}
	var units []Unit
	if err := json.Unmarshal(data, &units); err != nil {
		return nil, err
	}
	return units, nil
}

func firstByte(raw json.RawMessage) byte {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
