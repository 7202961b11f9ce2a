package compose

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/photonforge/piclet/pkg/errors"
	"github.com/photonforge/piclet/pkg/geom"
)

// Waveguide describes one routable waveguide type.
type Waveguide struct {
	Type       string `toml:"type"`
	Wavelength int    `toml:"wavelength"`
	Width      int64  `toml:"width"`
	Radius     int64  `toml:"radius"`
}

// Tech carries the die and routing parameters a piclet is composed
// against. All lengths are dbu (1 nm).
type Tech struct {
	DieWidth  int64 `toml:"die_width"`
	DieHeight int64 `toml:"die_height"`

	KeepoutWidth  int64 `toml:"keepout_width"`
	KeepoutHeight int64 `toml:"keepout_height"`

	FiberPitch          int64 `toml:"fiber_pitch"`
	GroundWireWidth     int64 `toml:"ground_wire_width"`
	TrenchBondpadOffset int64 `toml:"trench_bondpad_offset"`

	MetalWidth       int64 `toml:"metal_width"`
	PadPitch         int64 `toml:"pad_pitch"`
	LaserPadDistance int64 `toml:"laser_pad_distance"`

	// LaserTopContactDX offsets the laser's top-contact pad from the
	// laser bounding box's right edge.
	LaserTopContactDX int64 `toml:"laser_top_contact_dx"`

	// HeaterShift moves the heater right of its butt-coupled position so
	// the laser-to-heater waveguide has a straight run.
	HeaterShift int64 `toml:"heater_shift"`

	// SubmissionRaise lifts the submission above the splitter axis.
	SubmissionRaise int64 `toml:"submission_raise"`

	GCMargin int64 `toml:"gc_margin"`
	GCYStart int64 `toml:"gc_y_start"`

	Waveguides []Waveguide `toml:"waveguide"`
}

// DefaultTech returns the shipped 3x3 mm SiN die parameters.
func DefaultTech() Tech {
	return Tech{
		DieWidth:  2753330,
		DieHeight: 2753340,

		KeepoutWidth:  2000000,
		KeepoutHeight: 200000,

		FiberPitch:          127000,
		GroundWireWidth:     20000,
		TrenchBondpadOffset: 20000,

		MetalWidth:       20000,
		PadPitch:         150000,
		LaserPadDistance: 200000,

		LaserTopContactDX: -380000,
		HeaterShift:       100000,
		SubmissionRaise:   250000,

		GCMargin: 150000,
		GCYStart: -200000,

		Waveguides: []Waveguide{
			{
				Type:       "SiN Strip TE 1310 nm, w=800 nm",
				Wavelength: 1310,
				Width:      800,
				Radius:     60000,
			},
			{
				Type:       "SiN Strip TE 1550 nm, w=1000 nm",
				Wavelength: 1550,
				Width:      1000,
				Radius:     80000,
			},
		},
	}
}

// LoadTech reads a technology TOML file. Fields absent from the file keep
// their DefaultTech values, so a file can override just the die size.
func LoadTech(path string) (Tech, error) {
	t := DefaultTech()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, errors.Wrap(errors.ErrCodeIO, err, "read tech file %s", path)
	}
	if err := toml.Unmarshal(data, &t); err != nil {
		return t, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse tech file %s", path)
	}
	return t, nil
}

// Die returns the floorplan box, centered on the origin.
func (t Tech) Die() geom.Box {
	return geom.Box{
		X1: -t.DieWidth / 2, Y1: -t.DieHeight / 2,
		X2: t.DieWidth / 2, Y2: t.DieHeight / 2,
	}
}

// WaveguideFor returns the waveguide type for a wavelength.
func (t Tech) WaveguideFor(wavelength int) (Waveguide, bool) {
	for _, w := range t.Waveguides {
		if w.Wavelength == wavelength {
			return w, true
		}
	}
	return Waveguide{}, false
}
