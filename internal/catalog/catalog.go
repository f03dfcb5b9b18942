// Package catalog serves the static grain reference data auctions are created from.
package catalog

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"grain-auction/internal/auctionerrors"
	"grain-auction/internal/models"
)

// Grain is a catalog entry. Quality attributes keep their display form
// ("12%", "780 g/l", "N/A") and are parsed when a snapshot is taken.
type Grain struct {
	ID          string `json:"id" yaml:"id"`
	NameEN      string `json:"name_en" yaml:"name_en"`
	NameUA      string `json:"name_ua" yaml:"name_ua"`
	Category    int    `json:"category" yaml:"category"`
	Moisture    string `json:"moisture" yaml:"moisture"`
	Protein     string `json:"protein" yaml:"protein"`
	Gluten      string `json:"gluten" yaml:"gluten"`
	TestWeight  string `json:"test_weight" yaml:"test_weight"`
	Description string `json:"description,omitempty" yaml:"description"`
	Active      bool   `json:"active" yaml:"active"`
}

// Catalog looks grains up by id
type Catalog interface {
	Lookup(grainID string) (Grain, error)
	List() []Grain
}

// Static is an immutable in-memory catalog
type Static struct {
	order  []string
	grains map[string]Grain
}

type catalogFile struct {
	Grains []Grain `yaml:"grains"`
}

// NewStatic validates grains and builds a catalog preserving their order.
func NewStatic(grains ...Grain) (*Static, error) {
	c := &Static{grains: make(map[string]Grain, len(grains))}
	for _, g := range grains {
		if strings.TrimSpace(g.ID) == "" {
			return nil, fmt.Errorf("catalog: grain %q has no id", g.NameEN)
		}
		if _, dup := c.grains[g.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate grain %s", g.ID)
		}
		if _, err := g.Snapshot(); err != nil {
			return nil, err
		}
		c.grains[g.ID] = g
		c.order = append(c.order, g.ID)
	}
	return c, nil
}

// ParseYAML decodes a catalog payload
func ParseYAML(data []byte) (*Static, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("catalog: payload is empty")
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	return NewStatic(f.Grains...)
}

// LoadFile reads a YAML catalog from disk
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Lookup returns an active grain by id
func (c *Static) Lookup(grainID string) (Grain, error) {
	g, ok := c.grains[grainID]
	if !ok || !g.Active {
		return Grain{}, fmt.Errorf("catalog: %w - id %s", auctionerrors.ErrGrainNotFound, grainID)
	}
	return g, nil
}

// List returns active grains in catalog order
func (c *Static) List() []Grain {
	out := make([]Grain, 0, len(c.order))
	for _, id := range c.order {
		if g := c.grains[id]; g.Active {
			out = append(out, g)
		}
	}
	return out
}

// Snapshot copies the grain's current quality attributes into the immutable form stored on an auction.
func (g Grain) Snapshot() (models.GrainSnapshot, error) {
	if g.Category < 1 || g.Category > 3 {
		return models.GrainSnapshot{}, fmt.Errorf("catalog: grain %s: category must be 1, 2 or 3, got %d", g.ID, g.Category)
	}
	moisture, err := parseMeasure(g.Moisture)
	if err != nil || moisture == nil {
		return models.GrainSnapshot{}, fmt.Errorf("catalog: grain %s: moisture %q: %v", g.ID, g.Moisture, errOrMissing(err))
	}
	protein, err := parseMeasure(g.Protein)
	if err != nil || protein == nil {
		return models.GrainSnapshot{}, fmt.Errorf("catalog: grain %s: protein %q: %v", g.ID, g.Protein, errOrMissing(err))
	}
	gluten, err := parseMeasure(g.Gluten)
	if err != nil {
		return models.GrainSnapshot{}, fmt.Errorf("catalog: grain %s: gluten %q: %w", g.ID, g.Gluten, err)
	}
	testWeight, err := parseMeasure(g.TestWeight)
	if err != nil {
		return models.GrainSnapshot{}, fmt.Errorf("catalog: grain %s: test weight %q: %w", g.ID, g.TestWeight, err)
	}
	return models.GrainSnapshot{
		GrainID:    g.ID,
		GrainType:  g.NameEN,
		Category:   g.Category,
		Moisture:   *moisture,
		Protein:    *protein,
		Gluten:     gluten,
		TestWeight: testWeight,
	}, nil
}

func errOrMissing(err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("value is required")
}

// parseMeasure reads the leading number of a display value. Empty and "N/A" mean not applicable.
func parseMeasure(raw string) (*decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "n/a") || s == "-" {
		return nil, nil
	}
	end := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != ','
	})
	if end == 0 {
		return nil, fmt.Errorf("no leading number")
	}
	if end > 0 {
		s = s[:end]
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return nil, err
	}
	return &d, nil
}
