package catalog

import (
	"fmt"
	"sort"
)

// MaxPlayableReferenceID is the highest reference id of a player-ownable unit.
// Vendor master data also lists enemy units above this id.
const MaxPlayableReferenceID = 1500

// Entry is the display metadata for one reference unit
type Entry struct {
	ReferenceID int
	Name        string
	CategoryID  int
	SortOrder   int
}

// Category is a reference unit category (ship type)
type Category struct {
	ID   int
	Name string
}

// Catalog maps reference ids and category ids to display metadata. Read-only.
type Catalog struct {
	entries    map[int]Entry
	categories map[int]string
	ordered    []Entry
}

// Empty returns a catalog with no data. Lookups fall back to raw ids.
func Empty() *Catalog {
	return New(nil, nil)
}

// New builds a catalog. Later duplicates overwrite earlier ones.
func New(entries []Entry, categories []Category) *Catalog {
	c := &Catalog{
		entries:    make(map[int]Entry, len(entries)),
		categories: make(map[int]string, len(categories)),
	}
	for _, e := range entries {
		c.entries[e.ReferenceID] = e
	}
	for _, cat := range categories {
		c.categories[cat.ID] = cat.Name
	}
	c.ordered = make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		c.ordered = append(c.ordered, e)
	}
	sort.Slice(c.ordered, func(i, j int) bool {
		a, b := c.ordered[i], c.ordered[j]
		if a.SortOrder != 0 && b.SortOrder != 0 && a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.ReferenceID < b.ReferenceID
	})
	return c
}

// Len returns the number of reference entries
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Lookup resolves a reference id
func (c *Catalog) Lookup(referenceID int) (Entry, bool) {
	e, ok := c.entries[referenceID]
	return e, ok
}

// Name returns the display name, or "ID:<n>" when the id is unknown
func (c *Catalog) Name(referenceID int) string {
	if e, ok := c.entries[referenceID]; ok && e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("ID:%d", referenceID)
}

// CategoryOf returns the category id of a reference unit (0 when unknown)
func (c *Catalog) CategoryOf(referenceID int) int {
	return c.entries[referenceID].CategoryID
}

// CategoryName returns the display name of a category ("" when unknown)
func (c *Catalog) CategoryName(categoryID int) string {
	return c.categories[categoryID]
}

// Categories returns all categories ordered by id
func (c *Catalog) Categories() []Category {
	out := make([]Category, 0, len(c.categories))
	for id, name := range c.categories {
		out = append(out, Category{ID: id, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Playable returns the player-ownable entries in display order
// (sort order when both entries carry one, reference id otherwise)
func (c *Catalog) Playable() []Entry {
	out := make([]Entry, 0, len(c.ordered))
	for _, e := range c.ordered {
		if e.ReferenceID <= MaxPlayableReferenceID {
			out = append(out, e)
		}
	}
	return out
}
