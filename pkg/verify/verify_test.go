package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photonforge/piclet/pkg/compose"
	"github.com/photonforge/piclet/pkg/geom"
	"github.com/photonforge/piclet/pkg/layout"
	"github.com/photonforge/piclet/pkg/route"
)

func composed(t *testing.T, sub *layout.Cell) *compose.Result {
	t.Helper()
	c, err := compose.New(compose.Options{Name: "alice", Couplers: true})
	require.NoError(t, err)
	res, err := c.Compose(sub)
	require.NoError(t, err)
	return res
}

func markedSubmission(t *testing.T) *layout.Cell {
	t.Helper()
	l := layout.New("student")
	root := l.CreateCell("student_chip")
	port := l.CreateCell("port_SiN_marker")
	port.AddShape(layout.BoxShape(layout.LayerDevRec, geom.Box{X1: 0, Y1: -500, X2: 2000, Y2: 500}))
	root.Insert(port, geom.Translate(5000, 0))
	return root
}

func TestRunCleanPiclet(t *testing.T) {
	rep := Run(composed(t, markedSubmission(t)))
	assert.True(t, rep.OK())
	assert.Empty(t, rep.Issues)
}

func TestRunDegradedPiclet(t *testing.T) {
	l := layout.New("student")
	root := l.CreateCell("student_chip")
	root.AddShape(layout.BoxShape(layout.LayerDevRec, geom.Box{X1: 0, Y1: -1000, X2: 30000, Y2: 1000}))

	rep := Run(composed(t, root))
	assert.True(t, rep.OK(), "warnings do not fail the report")
	require.Len(t, rep.Issues, 1)
	assert.Equal(t, SeverityWarning, rep.Issues[0].Severity)
	assert.Equal(t, "degraded-inlet", rep.Issues[0].Check)
}

func TestRouteEndpointsDetached(t *testing.T) {
	res := composed(t, markedSubmission(t))
	res.Routes[0].Points[0].X += 5

	rep := Run(res, RouteEndpoints{})
	assert.False(t, rep.OK())
	assert.Equal(t, 1, rep.Errors())
	assert.Contains(t, rep.Issues[0].Message, "detached")
}

func TestRouteEndpointsTooFewPoints(t *testing.T) {
	res := composed(t, markedSubmission(t))
	res.Routes[2].Points = res.Routes[2].Points[:1]

	rep := Run(res, RouteEndpoints{})
	assert.Equal(t, 1, rep.Errors())
}

func TestPinIntegrityMissingEndpointPin(t *testing.T) {
	res := composed(t, markedSubmission(t))
	res.Routes[0].To.Pin = "ghost"

	rep := Run(res, PinIntegrity{})
	assert.Equal(t, 1, rep.Errors())
	assert.Contains(t, rep.Issues[0].Message, "missing pin")
}

func TestPinIntegrityDuplicatePins(t *testing.T) {
	l := layout.New("bare")
	top := l.CreateCell("top")
	top.Pins = append(top.Pins,
		layout.Pin{Name: "opt1", Width: 800},
		layout.Pin{Name: "opt1", Width: 800},
	)

	rep := Run(&compose.Result{Layout: l, Top: top}, PinIntegrity{})
	assert.Equal(t, 1, rep.Errors())
	assert.Contains(t, rep.Issues[0].Message, "twice")
}

func TestFloorplanBoundsMissingFloorplan(t *testing.T) {
	l := layout.New("bare")
	res := &compose.Result{
		Layout: l,
		Top:    l.CreateCell("top"),
	}
	rep := Run(res, FloorplanBounds{})
	assert.False(t, rep.OK())
	assert.Contains(t, rep.Issues[0].Message, "no floorplan")
}

func TestFloorplanBoundsEscape(t *testing.T) {
	l := layout.New("bare")
	top := l.CreateCell("top")
	top.AddShape(layout.BoxShape(layout.LayerFloorPlan, geom.Box{X1: 0, Y1: 0, X2: 1000, Y2: 1000}))
	block := l.CreateCell("block")
	block.AddShape(layout.BoxShape(layout.LayerDevRec, geom.Box{X1: 0, Y1: 0, X2: 500, Y2: 500}))
	top.Insert(block, geom.Translate(800, 0))

	res := &compose.Result{Layout: l, Top: top}
	rep := Run(res, FloorplanBounds{})
	assert.Equal(t, 1, rep.Errors())
	assert.Contains(t, rep.Issues[0].Message, "escapes")
}

func TestRunWithNoRoutes(t *testing.T) {
	l := layout.New("bare")
	top := l.CreateCell("top")
	top.AddShape(layout.BoxShape(layout.LayerFloorPlan, geom.Box{X1: -1000, Y1: -1000, X2: 1000, Y2: 1000}))

	rep := Run(&compose.Result{Layout: l, Top: top, Routes: []*route.Route{}})
	assert.True(t, rep.OK())
}
