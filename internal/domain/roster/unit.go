package roster

import (
	"encoding/json"
	"fmt"
)

// Field names of the vendor roster payload that the engine interprets
const (
	fieldInstanceID  = "api_id"
	fieldReferenceID = "api_ship_id"
	fieldLevel       = "api_lv"
)

// Unit is one owned copy of a game unit.
//
// InstanceID is unique within a roster; ReferenceID points into the reference
// catalog and may repeat across instances. Every field of the imported payload
// that is not modeled here (stat arrays, upgrade counters, ...) is kept verbatim
// in extra so that load/save round-trips are lossless.
type Unit struct {
	InstanceID  int
	ReferenceID int
	Level       int
	extra       map[string]json.RawMessage
}

// NewUnit creates a unit without any extra stat fields
func NewUnit(instanceID, referenceID, level int) Unit {
	return Unit{InstanceID: instanceID, ReferenceID: referenceID, Level: level}
}

// Stat returns a numeric stat. Array stats (current/max pairs) yield their first element.
func (u Unit) Stat(name string) (int, bool) {
	raw, ok := u.extra[name]
	if !ok {
		return 0, false
	}
	var scalar float64
	if err := json.Unmarshal(raw, &scalar); err == nil {
		return int(scalar), true
	}
	var list []float64
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return int(list[0]), true
	}
	return 0, false
}

// WithStat returns a copy of the unit with a scalar stat set
func (u Unit) WithStat(name string, value interface{}) Unit {
	data, err := json.Marshal(value)
	if err != nil {
		return u
	}
	extra := make(map[string]json.RawMessage, len(u.extra)+1)
	for k, v := range u.extra {
		extra[k] = v
	}
	extra[name] = data
	u.extra = extra
	return u
}

// MarshalJSON writes the modeled fields followed by every preserved extra field
func (u Unit) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(u.extra)+3)
	for k, v := range u.extra {
		out[k] = v
	}
	for name, value := range map[string]int{
		fieldInstanceID:  u.InstanceID,
		fieldReferenceID: u.ReferenceID,
		fieldLevel:       u.Level,
	} {
		data, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		out[name] = data
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a vendor unit object. Missing numeric fields default to zero.
func (u *Unit) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("unit must be a JSON object: %w", err)
	}

	var err error
	if u.InstanceID, err = intField(fields, fieldInstanceID); err != nil {
		return err
	}
	if u.ReferenceID, err = intField(fields, fieldReferenceID); err != nil {
		return err
	}
	if u.Level, err = intField(fields, fieldLevel); err != nil {
		return err
	}

	delete(fields, fieldInstanceID)
	delete(fields, fieldReferenceID)
	delete(fields, fieldLevel)
	if len(fields) == 0 {
		fields = nil
	}
	u.extra = fields
	return nil
}

func intField(fields map[string]json.RawMessage, name string) (int, error) {
	raw, ok := fields[name]
	if !ok || string(raw) == "null" {
		return 0, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, fmt.Errorf("field %s must be numeric: %w", name, err)
	}
	return int(n), nil
}
