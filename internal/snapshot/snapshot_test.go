package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/seedexport/internal/diag"
	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/internal/host/memhost"
	"github.com/Faultbox/seedexport/internal/naming"
	"github.com/Faultbox/seedexport/pkg/math"
)

const sceneDoc = `
format_version: "1.0"
name: shot
time: 7
nodes:
  - name: "|world"
    type: transform
  - name: "|world|ball"
    type: transform
    keys:
      - {time: 1, translate: [0, 0, 0]}
      - {time: 2, translate: [2, 0, 0]}
  - name: "|world|ball|ballShape"
    type: mesh
    materials: [red]
    mesh:
      vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
      faces: [[0, 1, 2]]
      keys:
        - {time: 1, vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]}
        - {time: 2, vertices: [[0, 0, 0], [2, 0, 0], [0, 1, 0]]}
  - name: "|world|hidden"
    type: transform
    attrs: {visibility: false}
  - name: "|world|hidden|hiddenShape"
    type: mesh
  - name: "|world|orig"
    type: transform
  - name: "|world|orig|origShape"
    type: mesh
    attrs: {intermediateObject: true}
  - name: "|world|rigCtrl"
    type: transform
  - name: "|world|rigCtrl|rigCtrlShape"
    type: mesh
  - name: "|key"
    type: transform
    translate: [0, 5, 0]
  - name: "|key|keyShape"
    type: spotLight
    attrs: {intensity: 3, coneAngle: 30, penumbraAngle: 5}
  - name: "|cam"
    type: transform
    translate: [0, 0, 10]
  - name: "|cam|camShape"
    type: camera
    attrs: {depthOfField: true}
  - name: red
    type: lambert
`

func loadScene(t *testing.T) *memhost.Scene {
	t.Helper()
	s, err := memhost.Parse([]byte(sceneDoc))
	require.NoError(t, err)
	return s
}

func testOptions(t *testing.T, s *memhost.Scene, frame int) Options {
	return Options{
		Frame:       frame,
		Samples:     3,
		GeometryDir: filepath.Join(t.TempDir(), "geometry"),
		GeometryRef: "1/geometry",
		Exporter:    &memhost.OBJWriter{Scene: s},
	}
}

func TestSampleTimes(t *testing.T) {
	tests := []struct {
		name    string
		frame   int
		samples int
		blur    bool
		want    []float64
	}{
		{"no blur", 4, 5, false, []float64{4}},
		{"two", 4, 2, true, []float64{4, 5}},
		{"three", 1, 3, true, []float64{1, 1.5, 2}},
		{"five", 0, 5, true, []float64{0, 0.25, 0.5, 0.75, 1}},
		{"clamped", 2, 1, true, []float64{2, 3}},
		{"zero clamped", 2, 0, true, []float64{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SampleTimes(tt.frame, tt.samples, tt.blur)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestCaptureStatic(t *testing.T) {
	s := loadScene(t)
	opts := testOptions(t, s, 1)

	snap, err := Capture(context.Background(), s, opts)
	require.NoError(t, err)

	assert.Equal(t, 7.0, s.CurrentTime(), "host time restored")
	assert.Equal(t, []float64{1}, snap.Times)
	require.Len(t, snap.Roots, 3)
	assert.Equal(t, "world", snap.Roots[0].Name)

	ball := snap.Roots[0].Transforms[0]
	assert.Equal(t, "world_ball", ball.Name)
	assert.True(t, ball.Animated)
	assert.False(t, snap.Roots[0].Animated)
	assert.Len(t, ball.World, 1)

	hidden := snap.Roots[0].Transforms[1]
	assert.False(t, hidden.Visible)
	assert.Empty(t, hidden.Meshes)

	// Hidden and intermediate meshes are not captured.
	var names []string
	for _, m := range snap.Meshes {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"world_ball_ballShape", "world_rigCtrl_rigCtrlShape"}, names)

	m := snap.Meshes[0]
	assert.Equal(t, []string{"1/geometry/world_ball_ballShape.obj"}, m.Files)
	assert.Equal(t, []string{"red"}, m.Materials)
	assert.Same(t, ball, m.Transform)
	assert.FileExists(t, filepath.Join(opts.GeometryDir, "world_ball_ballShape.obj"))

	require.Len(t, snap.Lights, 1)
	l := snap.Lights[0]
	assert.Equal(t, host.KindSpotLight, l.Kind)
	assert.Equal(t, 3.0, l.Intensity)
	assert.Equal(t, 30.0, l.ConeAngle)
	assert.Equal(t, 5.0, l.PenumbraAngle)
	assert.True(t, l.World.ApproxEqual(math.Translate(0, 5, 0), 1e-12))

	cam, ok := snap.Camera("camShape")
	require.True(t, ok)
	assert.True(t, cam.DepthOfField)
	assert.Equal(t, 35.0, cam.FocalLength)
	require.Len(t, cam.World, 1)
	assert.Equal(t, math.Vec3{Z: 10}, cam.World[0].Translation())

	_, ok = snap.Camera("|nope")
	assert.False(t, ok)
	first, ok := snap.Camera("")
	assert.True(t, ok)
	assert.Same(t, cam, first)
}

func TestCaptureTransformationBlur(t *testing.T) {
	s := loadScene(t)
	opts := testOptions(t, s, 1)
	opts.TransformationBlur = true
	opts.CameraBlur = true

	snap, err := Capture(context.Background(), s, opts)
	require.NoError(t, err)

	ball := snap.Roots[0].Transforms[0]
	require.Len(t, ball.World, 3)
	for i, x := range []float64{0, 1, 2} {
		assert.InDelta(t, x, ball.World[i].Translation().X, 1e-12, "sample %d", i)
	}

	cam, _ := snap.Camera("")
	assert.Len(t, cam.World, 3)

	// Geometry is only written once without deformation blur.
	assert.Len(t, snap.Meshes[0].Files, 1)
	assert.Equal(t, 7.0, s.CurrentTime())
}

func TestCaptureDeformationBlur(t *testing.T) {
	s := loadScene(t)
	opts := testOptions(t, s, 1)
	opts.DeformationBlur = true

	snap, err := Capture(context.Background(), s, opts)
	require.NoError(t, err)

	m := snap.Meshes[0]
	assert.Equal(t, []string{
		"1/geometry/world_ball_ballShape.000.obj",
		"1/geometry/world_ball_ballShape.001.obj",
		"1/geometry/world_ball_ballShape.002.obj",
	}, m.Files)
	for _, f := range m.Files {
		assert.FileExists(t, filepath.Join(opts.GeometryDir, filepath.Base(f)))
	}

	mid, err := os.ReadFile(filepath.Join(opts.GeometryDir, "world_ball_ballShape.001.obj"))
	require.NoError(t, err)
	assert.Contains(t, string(mid), "v 1.500000 0.000000 0.000000")

	// Transforms keep a single sample.
	assert.Len(t, snap.Transforms[0].World, 1)
}

func TestCaptureClampsSamples(t *testing.T) {
	s := loadScene(t)
	opts := testOptions(t, s, 1)
	opts.DeformationBlur = true
	opts.Samples = 1
	opts.Report = diag.New()

	snap, err := Capture(context.Background(), s, opts)
	require.NoError(t, err)
	assert.Len(t, snap.Times, 2)
	assert.Len(t, snap.Meshes[0].Files, 2)
	require.Len(t, opts.Report.Warnings(), 1)
	assert.Contains(t, opts.Report.Warnings()[0].Message, "clamped")
}

func TestCaptureExclude(t *testing.T) {
	s := loadScene(t)
	opts := testOptions(t, s, 1)
	opts.Exclude = []string{"rig*", "|key"}

	snap, err := Capture(context.Background(), s, opts)
	require.NoError(t, err)

	require.Len(t, snap.Meshes, 1)
	assert.Equal(t, "world_ball_ballShape", snap.Meshes[0].Name)
	assert.Empty(t, snap.Lights)
	assert.Len(t, snap.Roots, 2)
}

func TestCaptureBadExclude(t *testing.T) {
	s := loadScene(t)
	opts := testOptions(t, s, 1)
	opts.Exclude = []string{"[unclosed"}

	_, err := Capture(context.Background(), s, opts)
	assert.Error(t, err)
}

func TestCaptureCancelled(t *testing.T) {
	s := loadScene(t)
	opts := testOptions(t, s, 1)
	opts.TransformationBlur = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	snap, err := Capture(ctx, s, opts)
	assert.Nil(t, snap)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 7.0, s.CurrentTime())
	assert.NoDirExists(t, opts.GeometryDir)
}

// missingAttr hides one attribute of an otherwise complete host.
type missingAttr struct {
	*memhost.Scene
	node, attr string
}

func (m *missingAttr) Attribute(node, attr string) (any, error) {
	if node == m.node && attr == m.attr {
		return nil, host.NewQueryError(node, attr, host.ErrMissingAttribute)
	}
	return m.Scene.Attribute(node, attr)
}

func TestCaptureMissingAttribute(t *testing.T) {
	s := loadScene(t)
	h := &missingAttr{Scene: s, node: "|cam|camShape", attr: "focalLength"}
	opts := testOptions(t, s, 3)

	_, err := Capture(context.Background(), h, opts)
	var qe *host.QueryError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, "|cam|camShape", qe.Node)
	assert.Equal(t, "focalLength", qe.Attr)
	assert.Equal(t, 7.0, s.CurrentTime())
}

// matrixCounter counts world matrix queries per node.
type matrixCounter struct {
	*memhost.Scene
	calls map[string]int
}

func (m *matrixCounter) WorldMatrix(node string) (math.Mat4, error) {
	m.calls[node]++
	return m.Scene.WorldMatrix(node)
}

func TestCaptureMatrixQueries(t *testing.T) {
	tests := []struct {
		name string
		blur bool
		want int
	}{
		{"static", false, 1},
		{"transformation blur", true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := loadScene(t)
			h := &matrixCounter{Scene: s, calls: map[string]int{}}
			opts := testOptions(t, s, 1)
			opts.TransformationBlur = tt.blur

			_, err := Capture(context.Background(), h, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, h.calls["|world|ball"])
			assert.Equal(t, tt.want, h.calls["|world"])
		})
	}
}

func TestCaptureNameCollision(t *testing.T) {
	doc := `
format_version: "1.0"
nodes:
  - {name: "|a", type: transform}
  - {name: "|a|b", type: transform}
  - {name: "|a_b", type: transform}
`
	s, err := memhost.Parse([]byte(doc))
	require.NoError(t, err)

	_, err = Capture(context.Background(), s, Options{Frame: 1})
	assert.True(t, errors.Is(err, naming.ErrCollision), "err = %v", err)
}

func TestCaptureNeedsExporter(t *testing.T) {
	s := loadScene(t)
	_, err := Capture(context.Background(), s, Options{Frame: 1})
	assert.ErrorIs(t, err, ErrNoExporter)
}

func TestTransformWalk(t *testing.T) {
	s := loadScene(t)
	snap, err := Capture(context.Background(), s, testOptions(t, s, 1))
	require.NoError(t, err)

	var visited []string
	snap.Roots[0].Walk(func(t *Transform) { visited = append(visited, t.Name) })
	assert.Equal(t, []string{"world", "world_ball", "world_hidden", "world_orig", "world_rigCtrl"}, visited)
	assert.Same(t, snap.Roots[0], snap.Roots[0].Transforms[0].Parent)
}
