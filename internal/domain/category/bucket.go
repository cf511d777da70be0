package category

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
)

// RemainderName is the reserved name of the implicit catch-all bucket
const RemainderName = "Other"

// Bucket groups reference category ids under a user-visible name
type Bucket struct {
	Name        string `json:"name"`
	CategoryIDs []int  `json:"stypes"`
}

// Config is the ordered, user-editable list of buckets. The remainder bucket is
// never stored here; it is derived on every query.
type Config struct {
	Buckets []Bucket
}

// Names returns the selectable bucket names, remainder last
func (c Config) Names() []string {
	names := make([]string, 0, len(c.Buckets)+1)
	for _, b := range c.Buckets {
		names = append(names, b.Name)
	}
	return append(names, RemainderName)
}

// Validate checks that bucket names are non-empty, unique and not the reserved remainder name
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Buckets))
	for i, b := range c.Buckets {
		name := strings.TrimSpace(b.Name)
		if name == "" {
			return shared.NewValidationError(fmt.Sprintf("buckets[%d].name", i), "bucket name is required")
		}
		if name == RemainderName {
			return shared.NewValidationError(fmt.Sprintf("buckets[%d].name", i), "bucket name is reserved")
		}
		if seen[name] {
			return shared.NewValidationError(fmt.Sprintf("buckets[%d].name", i), "duplicate bucket name "+name)
		}
		seen[name] = true
	}
	return nil
}

// AddBucket appends an empty bucket
func (c Config) AddBucket(name string) (Config, error) {
	next := c.clone()
	next.Buckets = append(next.Buckets, Bucket{Name: strings.TrimSpace(name)})
	if err := next.Validate(); err != nil {
		return c, err
	}
	return next, nil
}

// RenameBucket renames the bucket at index
func (c Config) RenameBucket(index int, name string) (Config, error) {
	if index < 0 || index >= len(c.Buckets) {
		return c, shared.NewValidationError("index", "bucket does not exist")
	}
	next := c.clone()
	next.Buckets[index].Name = strings.TrimSpace(name)
	if err := next.Validate(); err != nil {
		return c, err
	}
	return next, nil
}

// SetCategories replaces the category ids claimed by the bucket at index
func (c Config) SetCategories(index int, ids []int) (Config, error) {
	if index < 0 || index >= len(c.Buckets) {
		return c, shared.NewValidationError("index", "bucket does not exist")
	}
	next := c.clone()
	next.Buckets[index].CategoryIDs = append([]int(nil), ids...)
	return next, nil
}

// RemoveBucket deletes the bucket at index; its ids fall back to the remainder
func (c Config) RemoveBucket(index int) (Config, error) {
	if index < 0 || index >= len(c.Buckets) {
		return c, shared.NewValidationError("index", "bucket does not exist")
	}
	next := c.clone()
	next.Buckets = append(next.Buckets[:index], next.Buckets[index+1:]...)
	return next, nil
}

func (c Config) clone() Config {
	out := Config{Buckets: make([]Bucket, len(c.Buckets))}
	for i, b := range c.Buckets {
		out.Buckets[i] = Bucket{Name: b.Name, CategoryIDs: append([]int(nil), b.CategoryIDs...)}
	}
	return out
}

// Decode reads a stored bucket list; corrupt documents yield an empty config
func Decode(data []byte) Config {
	var buckets []Bucket
	if err := json.Unmarshal(data, &buckets); err != nil {
		return Config{}
	}
	return Config{Buckets: buckets}
}

// Encode writes the bucket list in its stored form
func (c Config) Encode() ([]byte, error) {
	buckets := c.Buckets
	if buckets == nil {
		buckets = []Bucket{}
	}
	return json.Marshal(buckets)
}
