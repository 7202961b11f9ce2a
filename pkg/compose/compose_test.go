package compose

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photonforge/piclet/pkg/errors"
	"github.com/photonforge/piclet/pkg/geom"
	"github.com/photonforge/piclet/pkg/layout"
	"github.com/photonforge/piclet/pkg/parts"
)

// markedSubmission builds a submission tree with the port marker nested
// two levels deep: root -> ring (at 10000,20000) -> port_SiN_1550
// (at 5000,-1000 within ring).
func markedSubmission(t *testing.T) *layout.Cell {
	t.Helper()
	l := layout.New("student")
	root := l.CreateCell("student_chip")
	ring := l.CreateCell("ring_resonator")
	port := l.CreateCell("port_SiN_1550")
	port.AddShape(layout.BoxShape(layout.LayerDevRec, geom.Box{X1: 0, Y1: -500, X2: 2000, Y2: 500}))
	ring.AddShape(layout.BoxShape(layout.LayerDevRec, geom.Box{X1: 0, Y1: 0, X2: 40000, Y2: 40000}))
	ring.Insert(port, geom.Translate(5000, -1000))
	root.Insert(ring, geom.Translate(10000, 20000))
	return root
}

// plainSubmission builds a submission without any marker cell.
func plainSubmission(t *testing.T) *layout.Cell {
	t.Helper()
	l := layout.New("student")
	root := l.CreateCell("student_chip")
	root.AddShape(layout.BoxShape(layout.LayerDevRec, geom.Box{X1: 0, Y1: -1000, X2: 30000, Y2: 1000}))
	return root
}

// dropSource hides parts whose name contains a substring, for exercising
// the miss paths.
type dropSource struct {
	base parts.Source
	drop string
}

func (s dropSource) Definition(name, library string) (*parts.Def, bool, error) {
	if strings.Contains(name, s.drop) {
		return nil, false, nil
	}
	return s.base.Definition(name, library)
}

func TestComposeFull(t *testing.T) {
	c, err := New(Options{
		Name:       "alice",
		Couplers:   true,
		Designator: "A1",
		DFTLabel:   "DFT_PICLET",
	})
	require.NoError(t, err)

	res, err := c.Compose(markedSubmission(t))
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.False(t, res.Degraded)
	assert.Empty(t, res.Warnings)
	assert.NotEmpty(t, res.RunID)

	// laser + heater + 4 pads + splitter + submission + reference
	// coupler + 4 coupler/taper pairs
	assert.Equal(t, 17, res.Stats.Placements)
	require.Equal(t, 6, res.Stats.RouteCount)
	require.Len(t, res.Routes, 6)

	// Every route starts and ends exactly on its resolved pins.
	for _, rt := range res.Routes {
		require.NotEmpty(t, rt.Points)
		assert.Equal(t, rt.From.Pos, rt.Points[0], "route %s.%s start", rt.From.Cell, rt.From.Pin)
		assert.Equal(t, rt.To.Pos, rt.Points[len(rt.Points)-1], "route %s.%s end", rt.To.Cell, rt.To.Pin)
	}

	// The feed into the submission is the S-shaped run from the first
	// splitter output to the promoted inlet pin.
	feed := res.Routes[4]
	assert.Equal(t, "opt2", feed.From.Pin)
	assert.Equal(t, DefaultInletPin, feed.To.Pin)
	assert.Len(t, feed.Points, 4)

	// The inlet lands at the marker's left edge, mapped through the
	// nested transforms and the submission placement.
	assert.Equal(t, geom.Point{X: -125865, Y: 269000}, feed.To.Pos)

	// The reference run is a straight shot to the die's right side.
	ref := res.Routes[5]
	assert.Equal(t, "opt3", ref.From.Pin)
	assert.Equal(t, "opt1", ref.To.Pin)
	assert.Len(t, ref.Points, 2)
	assert.Equal(t, ref.From.Pos.Y, ref.To.Pos.Y)
}

func TestComposeSubmissionPlacement(t *testing.T) {
	c, err := New(Options{Name: "alice"})
	require.NoError(t, err)

	res, err := c.Compose(markedSubmission(t))
	require.NoError(t, err)

	var subInst *layout.Instance
	for _, inst := range res.Top.Insts {
		if strings.HasPrefix(inst.Target().Name, "student_chip") {
			subInst = inst
		}
	}
	require.NotNil(t, subInst, "submission instance in piclet")

	// Right of the splitter by twice the bend radius, raised above it.
	assert.Equal(t, geom.Trans{Disp: geom.Point{X: -140865, Y: 250000}}, subInst.Trans)
}

func TestComposeFallbackInlet(t *testing.T) {
	c, err := New(Options{Name: "bob"})
	require.NoError(t, err)

	res, err := c.Compose(plainSubmission(t))
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.True(t, res.Degraded)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "fallback inlet")

	// The fallback pin sits at the submission's bounding-box center.
	feed := res.Routes[len(res.Routes)-2]
	assert.Equal(t, DefaultInletPin, feed.To.Pin)
	assert.Equal(t, geom.Point{X: -125865, Y: 250000}, feed.To.Pos)
}

func TestComposeMissingLaserFatal(t *testing.T) {
	lib := parts.NewLibrary(dropSource{base: parts.DefaultSource(), drop: "Laser"})
	c, err := New(Options{Name: "carol", Library: lib})
	require.NoError(t, err)

	res, err := c.Compose(markedSubmission(t))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, errors.ErrCodePartsMiss, errors.GetCode(err))
}

func TestComposeMissingSplitterFatal(t *testing.T) {
	lib := parts.NewLibrary(dropSource{base: parts.DefaultSource(), drop: "YBranch"})
	c, err := New(Options{Name: "carol", Library: lib})
	require.NoError(t, err)

	res, err := c.Compose(markedSubmission(t))
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Equal(t, errors.ErrCodePartsMiss, errors.GetCode(err))
}

func TestComposeMissingReferenceDegradesGracefully(t *testing.T) {
	lib := parts.NewLibrary(dropSource{base: parts.DefaultSource(), drop: "FaML"})
	c, err := New(Options{Name: "dave", Library: lib})
	require.NoError(t, err)

	res, err := c.Compose(markedSubmission(t))
	require.NoError(t, err)

	assert.Equal(t, StateDone, res.State)
	assert.False(t, res.Degraded)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "reference coupler")
	assert.Equal(t, 5, res.Stats.RouteCount)
}

func TestComposeNilSubmission(t *testing.T) {
	c, err := New(Options{Name: "erin"})
	require.NoError(t, err)

	_, err = c.Compose(nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestComposeRequiresName(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
}

func TestComposeDeterministic(t *testing.T) {
	run := func() []byte {
		c, err := New(Options{Name: "alice", Couplers: true})
		require.NoError(t, err)
		res, err := c.Compose(markedSubmission(t))
		require.NoError(t, err)
		data, err := layout.MarshalLayout(res.Layout, res.Top.Name)
		require.NoError(t, err)
		return data
	}
	assert.Equal(t, string(run()), string(run()))
}

func TestComposedPicletRoundTrips(t *testing.T) {
	c, err := New(Options{Name: "alice", Couplers: true})
	require.NoError(t, err)
	res, err := c.Compose(markedSubmission(t))
	require.NoError(t, err)

	data, err := layout.MarshalLayout(res.Layout, res.Top.Name)
	require.NoError(t, err)

	l2, top2, err := layout.Read(strings.NewReader(string(data)))
	require.NoError(t, err)
	require.NotNil(t, top2)
	assert.Equal(t, res.Top.Name, top2.Name)
	assert.Equal(t, res.Top.BBox(), top2.BBox())

	again, err := layout.MarshalLayout(l2, top2.Name)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again))
}

func TestComposeDoesNotMutateSubmission(t *testing.T) {
	sub := markedSubmission(t)
	pinsBefore := len(sub.Pins)

	c, err := New(Options{Name: "alice"})
	require.NoError(t, err)
	_, err = c.Compose(sub)
	require.NoError(t, err)

	assert.Equal(t, pinsBefore, len(sub.Pins))
}
