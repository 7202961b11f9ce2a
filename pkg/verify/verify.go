// Package verify runs structural checks over a composed piclet before it
// is exported. Checks are cheap geometric audits, not a design-rule
// engine: they catch composition regressions (routes detached from pins,
// placements escaping the floorplan) rather than fab violations.
package verify

import (
	"fmt"

	"github.com/photonforge/piclet/pkg/compose"
	"github.com/photonforge/piclet/pkg/geom"
	"github.com/photonforge/piclet/pkg/layout"
	"github.com/photonforge/piclet/pkg/route"
)

// Severity classifies an issue.
type Severity string

// Severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding from a checker.
type Issue struct {
	Check    string
	Severity Severity
	Message  string
}

// Report collects findings from a verification run.
type Report struct {
	Issues []Issue
}

// Errors counts error-severity issues.
func (r Report) Errors() int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			n++
		}
	}
	return n
}

// OK reports whether the run found no errors. Warnings do not fail a
// report.
func (r Report) OK() bool { return r.Errors() == 0 }

// Checker audits one aspect of a composed result.
type Checker interface {
	Name() string
	Check(res *compose.Result) []Issue
}

// Run applies the checkers to the result. With no checkers given it runs
// the default set.
func Run(res *compose.Result, checkers ...Checker) Report {
	if len(checkers) == 0 {
		checkers = DefaultCheckers()
	}
	var rep Report
	for _, c := range checkers {
		rep.Issues = append(rep.Issues, c.Check(res)...)
	}
	return rep
}

// DefaultCheckers returns the standard audit set.
func DefaultCheckers() []Checker {
	return []Checker{
		RouteEndpoints{},
		PinIntegrity{},
		FloorplanBounds{},
		DegradedInlet{},
	}
}

// =============================================================================
// RouteEndpoints
// =============================================================================

// RouteEndpoints verifies every route is a real polyline whose ends
// coincide exactly with the pins it claims to connect.
type RouteEndpoints struct{}

func (RouteEndpoints) Name() string { return "route-endpoints" }

func (c RouteEndpoints) Check(res *compose.Result) []Issue {
	var issues []Issue
	for i, rt := range res.Routes {
		if len(rt.Points) < 2 {
			issues = append(issues, Issue{
				Check:    c.Name(),
				Severity: SeverityError,
				Message:  fmt.Sprintf("route %d has %d points", i, len(rt.Points)),
			})
			continue
		}
		if rt.Points[0] != rt.From.Pos {
			issues = append(issues, Issue{
				Check:    c.Name(),
				Severity: SeverityError,
				Message: fmt.Sprintf("route %d detached from %s.%s: starts at %v, pin at %v",
					i, rt.From.Cell, rt.From.Pin, rt.Points[0], rt.From.Pos),
			})
		}
		if last := rt.Points[len(rt.Points)-1]; last != rt.To.Pos {
			issues = append(issues, Issue{
				Check:    c.Name(),
				Severity: SeverityError,
				Message: fmt.Sprintf("route %d detached from %s.%s: ends at %v, pin at %v",
					i, rt.To.Cell, rt.To.Pin, last, rt.To.Pos),
			})
		}
	}
	return issues
}

// =============================================================================
// PinIntegrity
// =============================================================================

// PinIntegrity verifies no cell declares a pin name twice and every
// route endpoint names a pin that exists on its cell.
type PinIntegrity struct{}

func (PinIntegrity) Name() string { return "pin-integrity" }

func (c PinIntegrity) Check(res *compose.Result) []Issue {
	var issues []Issue
	for _, cell := range res.Layout.Cells() {
		seen := make(map[string]bool, len(cell.Pins))
		for _, p := range cell.Pins {
			if seen[p.Name] {
				issues = append(issues, Issue{
					Check:    c.Name(),
					Severity: SeverityError,
					Message:  fmt.Sprintf("cell %s declares pin %q twice", cell.Name, p.Name),
				})
			}
			seen[p.Name] = true
		}
	}
	for i, rt := range res.Routes {
		for _, ep := range []route.Endpoint{rt.From, rt.To} {
			cell, ok := res.Layout.Cell(ep.Cell)
			if !ok {
				issues = append(issues, Issue{
					Check:    c.Name(),
					Severity: SeverityError,
					Message:  fmt.Sprintf("route %d references unknown cell %s", i, ep.Cell),
				})
				continue
			}
			if _, ok := cell.Pin(ep.Pin); !ok {
				issues = append(issues, Issue{
					Check:    c.Name(),
					Severity: SeverityError,
					Message:  fmt.Sprintf("route %d references missing pin %s.%s", i, ep.Cell, ep.Pin),
				})
			}
		}
	}
	return issues
}

// =============================================================================
// FloorplanBounds
// =============================================================================

// FloorplanBounds verifies every placed instance sits inside the
// floorplan box drawn on the top cell.
type FloorplanBounds struct{}

func (FloorplanBounds) Name() string { return "floorplan-bounds" }

func (c FloorplanBounds) Check(res *compose.Result) []Issue {
	die, ok := floorplanOf(res.Top)
	if !ok {
		return []Issue{{
			Check:    c.Name(),
			Severity: SeverityError,
			Message:  "top cell has no floorplan box",
		}}
	}
	var issues []Issue
	for _, inst := range res.Top.Insts {
		b := inst.BBox()
		if b.Empty() || die.Contains(b) {
			continue
		}
		issues = append(issues, Issue{
			Check:    c.Name(),
			Severity: SeverityError,
			Message: fmt.Sprintf("instance %s at (%d,%d) escapes the floorplan",
				inst.Target().Name, inst.Trans.Disp.X, inst.Trans.Disp.Y),
		})
	}
	return issues
}

func floorplanOf(top *layout.Cell) (geom.Box, bool) {
	for _, s := range top.Shapes {
		if s.Layer == layout.LayerFloorPlan && s.Kind == layout.ShapeBox {
			return *s.Box, true
		}
	}
	return geom.Box{}, false
}

// =============================================================================
// DegradedInlet
// =============================================================================

// DegradedInlet surfaces a fallback-inlet composition as a warning so
// batch reports flag the submission for review.
type DegradedInlet struct{}

func (DegradedInlet) Name() string { return "degraded-inlet" }

func (c DegradedInlet) Check(res *compose.Result) []Issue {
	if !res.Degraded {
		return nil
	}
	return []Issue{{
		Check:    c.Name(),
		Severity: SeverityWarning,
		Message:  "inlet attached by fallback; submission has no port marker",
	}}
}
