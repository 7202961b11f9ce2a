// Package parts supplies the pre-built component cells the template
// composer places: laser, heater, bond pad, splitter, grating coupler,
// taper, and reference fiber coupler.
//
// Part geometry is declared in TOML (see defaults.toml for the shipped
// set) and materialized into cells on first lookup through a read-through
// cache. Cached cells belong to the library's own layout and are
// read-only from the composer's perspective; composers copy them into the
// piclet layout before placing them.
package parts

import (
	"fmt"
	"os"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/photonforge/piclet/pkg/errors"
)

// Def is one part declaration: a named cell in a named library with a
// device-recognition body box and its pins.
type Def struct {
	Name    string   `toml:"name"`
	Library string   `toml:"library"`
	Box     [4]int64 `toml:"box"` // x1, y1, x2, y2 in dbu
	Pins    []PinDef `toml:"pin"`
}

// PinDef declares one pin on a part.
type PinDef struct {
	Name   string `toml:"name"`
	X      int64  `toml:"x"`
	Y      int64  `toml:"y"`
	Facing int    `toml:"facing"` // degrees, quarter turns only
	Width  int64  `toml:"width"`
}

// Source resolves part definitions by (name, library) key. A miss is
// (nil, false, nil); errors are reserved for broken sources.
type Source interface {
	Definition(name, library string) (*Def, bool, error)
}

// Lister is an optional Source extension for enumerating definitions.
type Lister interface {
	Defs() []*Def
}

// fileSource holds definitions parsed from one TOML document.
type fileSource struct {
	defs map[string]*Def
}

// partsFile is the TOML document root.
type partsFile struct {
	Part []Def `toml:"part"`
}

func key(name, library string) string { return library + "/" + name }

// ParseSource parses TOML part definitions from bytes.
func ParseSource(data []byte) (Source, error) {
	var pf partsFile
	if err := toml.Unmarshal(data, &pf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse parts definitions")
	}
	src := &fileSource{defs: make(map[string]*Def, len(pf.Part))}
	for i := range pf.Part {
		d := &pf.Part[i]
		if d.Name == "" || d.Library == "" {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"part %d missing name or library", i)
		}
		k := key(d.Name, d.Library)
		if _, dup := src.defs[k]; dup {
			return nil, errors.New(errors.ErrCodeInvalidConfig,
				"duplicate part %s in library %s", d.Name, d.Library)
		}
		for _, p := range d.Pins {
			if p.Facing%90 != 0 {
				return nil, errors.New(errors.ErrCodeInvalidConfig,
					"part %s pin %s: facing %d not a quarter turn", d.Name, p.Name, p.Facing)
			}
		}
		src.defs[k] = d
	}
	return src, nil
}

// LoadSource parses TOML part definitions from a file.
func LoadSource(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read parts file %s", path)
	}
	return ParseSource(data)
}

// DefaultSource returns the shipped part set.
func DefaultSource() Source {
	src, err := ParseSource(defaultsTOML)
	if err != nil {
		// The embedded defaults are validated by tests; a parse failure
		// here is a build defect.
		panic(fmt.Sprintf("parts: embedded defaults invalid: %v", err))
	}
	return src
}

func (s *fileSource) Definition(name, library string) (*Def, bool, error) {
	d, ok := s.defs[key(name, library)]
	return d, ok, nil
}

// Defs returns all definitions sorted by library and name.
func (s *fileSource) Defs() []*Def {
	keys := make([]string, 0, len(s.defs))
	for k := range s.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	defs := make([]*Def, len(keys))
	for i, k := range keys {
		defs[i] = s.defs[k]
	}
	return defs
}
