// Package material provides the read-only material property table used for
// fastener, nut, insert and clamped-part allowables.
package material

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"Fastener/internal/calc/calcerr"
)

//go:embed materials.yaml
var embedded []byte

type Material struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	Specification string  `json:"specification" yaml:"specification"`
	ModulusMPa    float64 `json:"elastic_modulus_mpa" yaml:"elastic_modulus_mpa"`
	CTEPerC       float64 `json:"cte_per_c" yaml:"cte_per_c"`
	FtyMPa        float64 `json:"fty_mpa" yaml:"fty_mpa"`
	FtuMPa        float64 `json:"ftu_mpa" yaml:"ftu_mpa"`
	FsuMPa        float64 `json:"fsu_mpa" yaml:"fsu_mpa"`
	FbruMPa       float64 `json:"fbru_mpa" yaml:"fbru_mpa"`
}

func (m Material) validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("material without id")
	}
	for name, v := range map[string]float64{
		"elastic_modulus_mpa": m.ModulusMPa,
		"fty_mpa":             m.FtyMPa,
		"ftu_mpa":             m.FtuMPa,
		"fsu_mpa":             m.FsuMPa,
		"fbru_mpa":            m.FbruMPa,
	} {
		if !(v > 0) || math.IsInf(v, 0) {
			return fmt.Errorf("material %s: %s must be positive", m.ID, name)
		}
	}
	if math.IsNaN(m.CTEPerC) || math.IsInf(m.CTEPerC, 0) {
		return fmt.Errorf("material %s: cte_per_c must be finite", m.ID)
	}
	if m.FtyMPa > m.FtuMPa {
		return fmt.Errorf("material %s: fty exceeds ftu", m.ID)
	}
	return nil
}

type document struct {
	Version   string     `yaml:"version"`
	Materials []Material `yaml:"materials"`
}

// Table is immutable after construction and safe for concurrent reads.
type Table struct {
	version string
	byID    map[string]Material
}

func key(id string) string { return strings.ToUpper(strings.TrimSpace(id)) }

// Load parses a YAML materials document.
func Load(r io.Reader) (*Table, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, calcerr.Wrap(err, calcerr.CodeConfiguration, "decode materials")
	}
	t := &Table{version: doc.Version, byID: make(map[string]Material, len(doc.Materials))}
	for _, m := range doc.Materials {
		if err := m.validate(); err != nil {
			return nil, calcerr.Wrap(err, calcerr.CodeConfiguration, "invalid materials table")
		}
		k := key(m.ID)
		if _, dup := t.byID[k]; dup {
			return nil, calcerr.Newf(calcerr.CodeConfiguration, "duplicate material %s", m.ID)
		}
		t.byID[k] = m
	}
	return t, nil
}

// LoadFile reads a site materials file.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, calcerr.Wrap(err, calcerr.CodeConfiguration, "open materials file")
	}
	defer f.Close()
	return Load(f)
}

// Default returns the embedded table.
func Default() (*Table, error) {
	return Load(bytes.NewReader(embedded))
}

// Merge returns a new table with the entries of other added to or replacing
// those of t. Neither input is modified.
func (t *Table) Merge(other *Table) *Table {
	out := &Table{version: t.version, byID: make(map[string]Material, len(t.byID)+len(other.byID))}
	for k, m := range t.byID {
		out.byID[k] = m
	}
	for k, m := range other.byID {
		out.byID[k] = m
	}
	if other.version != "" {
		out.version = t.version + "+" + other.version
	}
	return out
}

func (t *Table) Version() string { return t.version }

// Lookup never falls back to a default material.
func (t *Table) Lookup(id string) (Material, error) {
	m, ok := t.byID[key(id)]
	if !ok {
		return Material{}, calcerr.Newf(calcerr.CodeUnknownMaterial, "unknown material %q", id)
	}
	return m, nil
}

// All returns materials sorted by id.
func (t *Table) All() []Material {
	out := make([]Material, 0, len(t.byID))
	for _, m := range t.byID {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
