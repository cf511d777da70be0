package catalog

import (
	"encoding/json"
	"errors"
	"strings"
)

const (
	svdataPrefix   = "svdata="
	unitTableKey   = "api_mst_ship"
	categoryKey    = "api_mst_stype"
	envelopeKey    = "api_data"
	uploadFieldKey = "data"
)

// ErrMissingTables is returned when a master payload lacks the unit or category table
var ErrMissingTables = errors.New("valid master data (api_mst_ship, api_mst_stype) not found")

// MasterData is the normalized, stored form of the vendor reference payload.
// Table rows are kept verbatim.
type MasterData struct {
	Units      []json.RawMessage `json:"api_mst_ship"`
	Categories []json.RawMessage `json:"api_mst_stype"`
}

// NormalizeMaster extracts the unit and category tables from an uploaded payload.
//
// The upload is an object whose "data" member is either the vendor object or a
// string holding it, optionally prefixed by "svdata=". The vendor object may wrap
// the tables in an "api_data" envelope. An upload without "data" is treated as
// the vendor object itself.
func NormalizeMaster(payload []byte) (*MasterData, error) {
	var upload map[string]json.RawMessage
	if err := json.Unmarshal(payload, &upload); err != nil {
		return nil, ErrMissingTables
	}

	root := json.RawMessage(payload)
	if data, ok := upload[uploadFieldKey]; ok {
		root = unwrapString(data)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(root, &obj); err != nil {
		return nil, ErrMissingTables
	}
	if inner, ok := obj[envelopeKey]; ok {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(inner, &envelope); err == nil {
			obj = envelope
		}
	}

	master := &MasterData{}
	if err := decodeTable(obj, unitTableKey, &master.Units); err != nil {
		return nil, err
	}
	if err := decodeTable(obj, categoryKey, &master.Categories); err != nil {
		return nil, err
	}
	return master, nil
}

// unwrapString returns the JSON held inside a (possibly svdata-prefixed) string
// value, or the raw value when it is not a string or does not hold JSON.
func unwrapString(raw json.RawMessage) json.RawMessage {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return raw
	}
	s = strings.TrimPrefix(strings.TrimSpace(s), svdataPrefix)
	if !json.Valid([]byte(s)) {
		return raw
	}
	return json.RawMessage(s)
}

func decodeTable(obj map[string]json.RawMessage, key string, into *[]json.RawMessage) error {
	raw, ok := obj[key]
	if !ok {
		return ErrMissingTables
	}
	if err := json.Unmarshal(raw, into); err != nil || *into == nil {
		return ErrMissingTables
	}
	return nil
}

type unitRow struct {
	ID     int    `json:"api_id"`
	Name   string `json:"api_name"`
	Stype  int    `json:"api_stype"`
	SortNo int    `json:"api_sortno"`
	SortID int    `json:"api_sort_id"`
}

type categoryRow struct {
	ID   int    `json:"api_id"`
	Name string `json:"api_name"`
}

// Load builds a catalog from a stored master document. It fails closed: any
// malformed input yields an empty catalog and rendering falls back to raw ids.
func Load(stored []byte) *Catalog {
	var doc struct {
		Units      []unitRow     `json:"api_mst_ship"`
		Categories []categoryRow `json:"api_mst_stype"`
	}
	if err := json.Unmarshal(stored, &doc); err != nil {
		return Empty()
	}

	entries := make([]Entry, 0, len(doc.Units))
	for _, row := range doc.Units {
		sortOrder := row.SortNo
		if sortOrder == 0 {
			sortOrder = row.SortID
		}
		entries = append(entries, Entry{
			ReferenceID: row.ID,
			Name:        row.Name,
			CategoryID:  row.Stype,
			SortOrder:   sortOrder,
		})
	}
	categories := make([]Category, 0, len(doc.Categories))
	for _, row := range doc.Categories {
		categories = append(categories, Category{ID: row.ID, Name: row.Name})
	}
	return New(entries, categories)
}
