// Package compose assembles piclets: it drives the placement engine and
// connector through the fixed template sequence — laser, heater, bond
// pads, splitter, submission, reference path — around one externally
// supplied submission cell.
//
// # Pipeline
//
// Create a Composer and run it per submission:
//
//	c, err := compose.New(compose.Options{Name: "alice"})
//	if err != nil {
//	    return err
//	}
//	res, err := c.Compose(submissionCell)
//	if err != nil {
//	    // this piclet failed; the caller moves on to the next submission
//	}
//	layout.WriteFile(res.Layout, res.Top.Name, outPath)
//
// A failed composition never yields a partial piclet: Compose returns an
// error and the caller discards the run. Non-fatal conditions (missing
// reference coupler, marker-less submission) surface as Warnings and the
// Degraded flag on an otherwise complete Result.
package compose

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/photonforge/piclet/pkg/errors"
	"github.com/photonforge/piclet/pkg/geom"
	"github.com/photonforge/piclet/pkg/layout"
	"github.com/photonforge/piclet/pkg/place"
	"github.com/photonforge/piclet/pkg/route"
)

// Part libraries the template draws from.
const (
	libDream = "EBeam-Dream"
	libSiN   = "EBeam-SiN"
)

// Result is one completed composition.
type Result struct {
	// RunID identifies this generation run in logs and reports.
	RunID string

	// Layout owns every cell the run produced; Top is the piclet cell.
	Layout *layout.Layout
	Top    *layout.Cell

	// State is the last completed composition state (StateDone on
	// success).
	State State

	// Degraded is set when the submission had no recognizable inlet
	// marker and the fallback attachment was used.
	Degraded bool

	// Warnings lists non-fatal conditions encountered during the run.
	Warnings []string

	// Routes are the synthesized connections, in creation order.
	Routes []*route.Route

	Stats Stats
}

// Stats summarizes a composition run.
type Stats struct {
	Placements int
	RouteCount int
	Elapsed    time.Duration
}

// Composer builds piclets from validated options. One Composer may be
// reused across submissions; each Compose call works on fresh state, so
// runs are independent and may be driven in parallel by the caller.
type Composer struct {
	opts Options
}

// New validates options and returns a Composer.
func New(opts Options) (*Composer, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Composer{opts: opts}, nil
}

// Compose assembles one piclet around the given submission cell. The
// submission may live in any layout; it is copied, never mutated.
func (c *Composer) Compose(submission *layout.Cell) (*Result, error) {
	if submission == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "submission cell is nil")
	}
	start := time.Now()

	r := &run{
		opts: &c.opts,
		die:  c.opts.Tech.Die(),
		res: &Result{
			RunID: uuid.NewString(),
			State: StateInit,
		},
	}
	r.resolveWaveguide()

	steps := []func() error{
		r.init,
		r.placeLaser,
		r.placeHeater,
		r.placePads,
		func() error { return r.resolveSubmission(submission) },
		r.placeSplitter,
		r.placeReference,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	r.res.State = StateDone

	if r.opts.Couplers {
		if err := r.placeCouplers(); err != nil {
			return nil, err
		}
	}
	r.drawLabels()

	r.res.Stats.Elapsed = time.Since(start)
	r.opts.Logger.Info("composed piclet",
		"run", r.res.RunID,
		"name", r.opts.Name,
		"placements", r.res.Stats.Placements,
		"routes", r.res.Stats.RouteCount,
		"degraded", r.res.Degraded,
		"elapsed", r.res.Stats.Elapsed.Round(time.Millisecond))
	return r.res, nil
}

// run is the mutable state of one composition.
type run struct {
	opts *Options
	res  *Result

	l   *layout.Layout
	top *layout.Cell
	die geom.Box

	wgMedium route.Medium
	radius   int64

	laser    *layout.Instance
	heater   *layout.Instance
	splitter *layout.Instance
	subRoot  *layout.Cell
	subInst  *layout.Instance
}

func (r *run) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	r.res.Warnings = append(r.res.Warnings, msg)
	r.opts.Logger.Warn(msg, "run", r.res.RunID)
}

func (r *run) enter(s State) {
	r.res.State = s
	r.opts.Logger.Debug("state", "run", r.res.RunID, "state", s.String())
}

// resolveWaveguide picks the waveguide type for the run's wavelength,
// falling back to a default width and bend radius when the technology
// does not know the wavelength.
func (r *run) resolveWaveguide() {
	wg, ok := r.opts.Tech.WaveguideFor(r.opts.Wavelength)
	if !ok {
		wg = Waveguide{
			Type:       fmt.Sprintf("SiN Strip TE %d nm, w=800 nm", r.opts.Wavelength),
			Wavelength: r.opts.Wavelength,
			Width:      DefaultInletWidth,
			Radius:     route.FallbackBendRadius,
		}
		r.warnf("no waveguide type for %d nm; using fallback radius %d", r.opts.Wavelength, wg.Radius)
	}
	r.wgMedium = route.Optical(wg.Type, wg.Width, wg.Radius)
	r.radius = wg.Radius
}

// part copies a library cell into the run's layout. A miss on a required
// part is fatal; optional misses return (nil, nil).
func (r *run) part(name, lib string, required bool) (*layout.Cell, error) {
	c, ok, err := r.opts.Library.Lookup(name, lib)
	if err != nil {
		return nil, err
	}
	if !ok {
		if required {
			return nil, errors.New(errors.ErrCodePartsMiss,
				"required cell %s unavailable in library %s", name, lib)
		}
		return nil, nil
	}
	return r.l.CopyTree(c), nil
}

func (r *run) connect(from *layout.Instance, fromPin string, to *layout.Instance, toPin string, m route.Medium) error {
	rt, err := route.Connect(r.top, from, fromPin, to, toPin, m)
	if err != nil {
		return err
	}
	r.res.Routes = append(r.res.Routes, rt)
	r.res.Stats.RouteCount++
	return nil
}

// init allocates the piclet layout and draws the floorplan and keepout
// regions.
func (r *run) init() error {
	r.l = layout.New(fmt.Sprintf("PIClet-3x3-%s", r.opts.Name))
	r.top = r.l.CreateCell(fmt.Sprintf("piclet_%s_%d", r.opts.Name, r.opts.Wavelength))
	r.res.Layout = r.l
	r.res.Top = r.top

	r.top.AddShape(layout.BoxShape(layout.LayerFloorPlan, r.die))

	t := r.opts.Tech
	r.top.AddShape(layout.BoxShape(layout.LayerKeepout, geom.Box{
		X1: r.die.Left(), Y1: r.die.Bottom(),
		X2: r.die.Left() + t.KeepoutWidth, Y2: r.die.Bottom() + t.KeepoutHeight,
	}))
	r.top.AddShape(layout.BoxShape(layout.LayerKeepout, geom.Box{
		X1: r.die.Left(), Y1: r.die.Top() - t.KeepoutHeight,
		X2: r.die.Left() + t.KeepoutWidth, Y2: r.die.Top(),
	}))
	return nil
}

// placeLaser aligns the laser against the die's left boundary on the
// horizontal center line.
func (r *run) placeLaser() error {
	cell, err := r.part(fmt.Sprintf("ebeam_dream_Laser_SiN_%d_Bond_BB", r.opts.Wavelength), libDream, true)
	if err != nil {
		return err
	}
	r.laser, err = place.Place(r.top, cell, place.EdgeAlign{
		Ref:     place.BoxRef(r.die),
		Edge:    place.Left,
		RefEdge: place.Left,
	})
	if err != nil {
		return err
	}
	r.res.Stats.Placements++
	r.enter(StateLaserPlaced)
	return nil
}

// placeHeater butt-couples the heater to the laser output, shifts it
// right for a straight feed run, and routes the waveguide.
func (r *run) placeHeater() error {
	cell, err := r.part("wg_heater", libSiN, true)
	if err != nil {
		return err
	}
	r.heater, err = place.Place(r.top, cell, place.PinAlign{
		Ref:    r.laser,
		RefPin: "opt1",
		Pin:    "opt1",
	})
	if err != nil {
		return err
	}
	r.heater.Move(r.opts.Tech.HeaterShift, 0)
	r.res.Stats.Placements++

	if err := r.connect(r.laser, "opt1", r.heater, "opt1", r.wgMedium); err != nil {
		return err
	}
	r.enter(StateHeaterConnected)
	return nil
}

// placePads places the laser-contact pad pair and the heater pad column
// above the laser, then routes the metal traces.
func (r *run) placePads() error {
	pad, err := r.part("ebeam_BondPad", libSiN, true)
	if err != nil {
		return err
	}
	t := r.opts.Tech
	metal := route.Electrical(t.MetalWidth)
	padBox := pad.BBox()
	laserBox := r.laser.BBox()

	padsX := laserBox.Left() + padBox.Width()/2 + t.GroundWireWidth + t.TrenchBondpadOffset
	padsY := laserBox.Top() + t.LaserPadDistance + padBox.Height()/2

	// Laser top contact pad and its partner routed toward the die edge.
	padL1, err := place.Place(r.top, pad, place.Absolute{
		At: geom.Point{X: laserBox.Right() + t.LaserTopContactDX, Y: padsY},
	})
	if err != nil {
		return err
	}
	padL2, err := place.Place(r.top, pad, place.Absolute{At: geom.Point{X: padsX, Y: padsY}})
	if err != nil {
		return err
	}
	if err := r.connect(padL1, "m_pin_left", padL2, "m_pin_right", metal); err != nil {
		return err
	}

	// Heater pad column at fixed pitch, each routed to its contact.
	padsY += t.PadPitch
	pad1, err := place.Place(r.top, pad, place.Absolute{At: geom.Point{X: padsX, Y: padsY}})
	if err != nil {
		return err
	}
	padsY += t.PadPitch
	pad2, err := place.Place(r.top, pad, place.Absolute{At: geom.Point{X: padsX, Y: padsY}})
	if err != nil {
		return err
	}
	r.res.Stats.Placements += 4

	if err := r.connect(pad1, "m_pin_right", r.heater, "elec1", metal); err != nil {
		return err
	}
	if err := r.connect(pad2, "m_pin_right", r.heater, "elec2", metal); err != nil {
		return err
	}
	r.enter(StatePadsRouted)
	return nil
}

// resolveSubmission copies the submission into the run's layout, locates
// its inlet marker, and attaches the inlet pin — at the marker's left
// edge when found, at the submission's bounding-box center (degraded)
// when not.
func (r *run) resolveSubmission(submission *layout.Cell) error {
	sub := r.l.CopyTree(submission)
	r.subRoot = sub

	marker := r.opts.Marker
	m, found := layout.FindNamed(sub, func(name string) bool {
		return strings.Contains(name, marker)
	})

	pol := r.opts.primaryInlet()
	cell, abs := m.Cell, m.Abs
	if found {
		r.opts.Logger.Debug("inlet marker found",
			"run", r.res.RunID, "cell", m.Cell.Name, "x", m.Pos.X, "y", m.Pos.Y)
	} else {
		pol = r.opts.fallbackInlet()
		cell, abs = sub, geom.Trans{}
		r.res.Degraded = true
		r.warnf("no %q marker in submission %s; attaching fallback inlet at bounding-box center",
			marker, r.opts.Name)
	}

	if err := attachInlet(cell, pol); err != nil {
		return err
	}
	if cell != sub {
		// Promote the inlet to the submission root so the splitter route
		// can resolve it on the placed instance.
		local, _ := cell.Pin(pol.Pin)
		if err := sub.AddPin(layout.Pin{
			Name:   pol.Pin,
			Pos:    abs.Apply(local.Pos),
			Facing: local.Facing.Add(abs.Rot),
			Width:  local.Width,
		}); err != nil {
			return err
		}
	}
	r.enter(StateSubmissionResolved)
	return nil
}

// attachInlet adds the policy's pin to the cell at the anchored position.
func attachInlet(cell *layout.Cell, pol InletPolicy) error {
	b := cell.BBox()
	if b.Empty() {
		b = geom.Box{}
	}
	var pos geom.Point
	switch pol.Anchor {
	case AnchorLeftEdge:
		pos = geom.Point{X: b.Left(), Y: b.CenterY()}
	default:
		pos = b.Center()
	}
	return cell.AddPin(layout.Pin{
		Name:   pol.Pin,
		Pos:    pos,
		Facing: pol.Facing,
		Width:  pol.Width,
	})
}

// placeSplitter butt-couples the splitter to the heater output, places
// the submission offset by twice the bend radius, and routes the first
// splitter output to the submission inlet.
func (r *run) placeSplitter() error {
	cell, err := r.part(fmt.Sprintf("ebeam_YBranch_te%d", r.opts.Wavelength), libSiN, true)
	if err != nil {
		return err
	}
	r.splitter, err = place.Place(r.top, cell, place.PinAlign{
		Ref:    r.heater,
		RefPin: "opt2",
		Pin:    "opt1",
	})
	if err != nil {
		return err
	}
	r.res.Stats.Placements++

	// Submission sits right of the splitter by twice the bend radius and
	// above it by the raise, leaving room for the feed S-route.
	sb := r.splitter.BBox()
	r.subInst, err = place.Place(r.top, r.subRoot, place.Absolute{
		At: geom.Point{
			X: sb.Right() + 2*r.radius,
			Y: sb.CenterY() + r.opts.Tech.SubmissionRaise,
		},
	})
	if err != nil {
		return err
	}
	r.res.Stats.Placements++

	if err := r.connect(r.splitter, "opt2", r.subInst, DefaultInletPin, r.wgMedium); err != nil {
		return err
	}
	r.enter(StateSplitterConnected)
	return nil
}

// placeReference places the fiber coupler at the die's right boundary,
// rotated 180 degrees, and routes the second splitter output to it. A
// missing reference part is a warning, not a failure.
func (r *run) placeReference() error {
	cell, err := r.part(fmt.Sprintf("ebeam_dream_FaML_SiN_%d_BB", r.opts.Wavelength), libDream, false)
	if err != nil {
		return err
	}
	if cell == nil {
		r.warnf("reference coupler unavailable; piclet has no reference path")
		r.enter(StateReferenceConnected)
		return nil
	}

	out, err := r.splitter.PinAbs("opt3")
	if err != nil {
		return err
	}
	faml, err := place.Place(r.top, cell, place.EdgeAlign{
		Ref:     place.BoxRef(r.die),
		Edge:    place.Left, // local left edge lands on the die's right under R180
		RefEdge: place.Right,
		Rot:     geom.R180,
		Dy:      out.Pos.Y - r.die.CenterY(),
	})
	if err != nil {
		return err
	}
	r.res.Stats.Placements++

	if err := r.connect(r.splitter, "opt3", faml, "opt1", r.wgMedium); err != nil {
		return err
	}
	r.enter(StateReferenceConnected)
	return nil
}

// placeCouplers adds the four-coupler fiber bank with tapers on the die's
// right side.
func (r *run) placeCouplers() error {
	gc, err := r.part(fmt.Sprintf("GC_SiN_TE_%d_8degOxide_BB", r.opts.Wavelength), libSiN, true)
	if err != nil {
		return err
	}
	taper, err := r.part("taper_SiN_750_800", libSiN, true)
	if err != nil {
		return err
	}

	t := r.opts.Tech
	gcX := r.die.Right() - t.GCMargin
	for i := int64(0); i < 4; i++ {
		inst, err := place.Place(r.top, gc, place.Absolute{
			At:  geom.Point{X: gcX, Y: t.GCYStart + t.FiberPitch*i},
			Rot: geom.R180,
		})
		if err != nil {
			return err
		}
		if _, err := place.Place(r.top, taper, place.PinAlign{
			Ref:    inst,
			RefPin: "opt1",
			Pin:    "opt2",
		}); err != nil {
			return err
		}
		r.res.Stats.Placements += 2
	}
	return nil
}

// drawLabels adds the measurement and design-for-test labels.
func (r *run) drawLabels() {
	t := r.opts.Tech
	if r.opts.Designator != "" {
		r.top.AddShape(layout.TextShape(layout.LayerText, layout.Text{
			Value: fmt.Sprintf("opt_in_TE_%d_device_%s", r.opts.Wavelength, r.opts.Designator),
			At:    geom.Point{X: r.die.Right() - t.GCMargin, Y: t.GCYStart + t.FiberPitch*3},
			Size:  10000,
		}))
	}
	if r.opts.DFTLabel != "" {
		r.top.AddShape(layout.TextShape(layout.LayerText, layout.Text{
			Value: r.opts.DFTLabel,
			At:    geom.Point{X: 0, Y: 500000},
			Size:  10000,
		}))
	}
}
