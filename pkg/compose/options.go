package compose

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/photonforge/piclet/pkg/errors"
	"github.com/photonforge/piclet/pkg/geom"
	"github.com/photonforge/piclet/pkg/parts"
)

// Default values shared by the CLI and library callers.
const (
	// DefaultWavelength selects the 1310 nm platform.
	DefaultWavelength = 1310

	// DefaultInletPin is the pin name attached to the submission and
	// routed from the splitter.
	DefaultInletPin = "opt_laser"

	// DefaultInletWidth is the inlet pin caliper width in dbu.
	DefaultInletWidth = 800

	// DefaultMarker is the substring identifying the submission's inlet
	// component.
	DefaultMarker = "port_SiN"
)

// InletAnchor selects where on the resolved component the inlet pin is
// attached.
type InletAnchor int

// Inlet anchors.
const (
	// AnchorLeftEdge attaches at the bounding box's left edge, vertical
	// center. Used when the marker component is found.
	AnchorLeftEdge InletAnchor = iota

	// AnchorCenter attaches at the bounding box center. Used for the
	// degraded fallback on marker-less submissions.
	AnchorCenter
)

// InletPolicy describes how an inlet pin is attached to a submission.
// Both the primary and the fallback path flow through one policy so the
// two attachment conventions differ only in anchor, not in facing or
// width.
type InletPolicy struct {
	Pin    string
	Anchor InletAnchor
	Facing geom.Rot
	Width  int64
}

// Options configures one composition run.
type Options struct {
	// Name labels the piclet, typically the submission file stem.
	Name string

	// Wavelength selects laser, grating coupler, and waveguide variants.
	Wavelength int

	// Marker is the cell-name substring the hierarchy walker searches
	// for inside the submission.
	Marker string

	// Tech carries die and routing parameters; zero value selects
	// DefaultTech.
	Tech Tech

	// Library supplies template part cells; nil selects the shipped set.
	Library *parts.Library

	// Couplers adds the four-coupler fiber bank on the die's right side.
	Couplers bool

	// Designator names the device in the measurement label; Labels are
	// drawn when it is non-empty.
	Designator string

	// DFTLabel, when non-empty, is drawn as a design-for-test marker.
	DFTLabel string

	// Logger receives progress output; nil discards it.
	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// Idempotent, in the manner of pipeline option structs.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Name == "" {
		return errors.New(errors.ErrCodeInvalidInput, "submission name is required")
	}
	if o.Wavelength == 0 {
		o.Wavelength = DefaultWavelength
	}
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	if o.Tech.DieWidth == 0 {
		o.Tech = DefaultTech()
	}
	if o.Library == nil {
		o.Library = parts.Default()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// primaryInlet is the attachment used when the marker component is found.
func (o *Options) primaryInlet() InletPolicy {
	return InletPolicy{
		Pin:    DefaultInletPin,
		Anchor: AnchorLeftEdge,
		Facing: geom.R180,
		Width:  DefaultInletWidth,
	}
}

// fallbackInlet is the degraded attachment for marker-less submissions.
// It shares the primary facing and width; only the anchor differs.
func (o *Options) fallbackInlet() InletPolicy {
	p := o.primaryInlet()
	p.Anchor = AnchorCenter
	return p
}
