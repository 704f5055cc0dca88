package assembly

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/seedexport/internal/diag"
	"github.com/Faultbox/seedexport/internal/host/memhost"
	"github.com/Faultbox/seedexport/internal/naming"
	"github.com/Faultbox/seedexport/internal/project"
	"github.com/Faultbox/seedexport/internal/shading"
	"github.com/Faultbox/seedexport/internal/snapshot"
	"github.com/Faultbox/seedexport/pkg/math"
)

const sceneDoc = `
format_version: "1.0"
name: yard
time: 1
nodes:
  - name: "|ground"
    type: transform
    scale: [10, 1, 10]
  - name: "|ground|groundShape"
    type: mesh
    materials: [gray]
    mesh:
      vertices: [[0, 0, 0], [1, 0, 0], [0, 0, 1]]
      faces: [[0, 1, 2]]
  - name: "|ball"
    type: transform
    keys:
      - {time: 1, translate: [1, 0, 0]}
      - {time: 2, translate: [3, 0, 0]}
  - name: "|ball|ballShape"
    type: mesh
    materials: [gray, oak]
    mesh:
      vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
      faces: [[0, 1, 2]]
  - name: "|sun"
    type: transform
  - name: "|sun|sunShape"
    type: directionalLight
    attrs: {color: [2, 2, 1], intensity: 0.5}
  - name: "|fill"
    type: transform
  - name: "|fill|fillShape"
    type: areaLight
  - name: "|bare"
    type: transform
  - name: "|bare|bareShape"
    type: mesh
    mesh:
      vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
      faces: [[0, 1, 2]]
  - name: gray
    type: lambert
  - name: wood
    type: file
    attrs: {fileTextureName: tex/wood.png}
  - name: oak
    type: lambert
connections:
  - {from: wood.outColor, to: oak.color}
`

type fixture struct {
	scene  *memhost.Scene
	snap   *snapshot.Snapshot
	names  *naming.Registry
	report *diag.Report
}

func capture(t *testing.T, doc string, blur bool, exclude ...string) *fixture {
	t.Helper()
	s, err := memhost.Parse([]byte(doc))
	require.NoError(t, err)

	f := &fixture{scene: s, names: naming.NewRegistry(), report: diag.New()}
	f.snap, err = snapshot.Capture(context.Background(), s, snapshot.Options{
		Frame:              1,
		TransformationBlur: blur,
		Samples:            2,
		GeometryDir:        filepath.Join(t.TempDir(), "geometry"),
		GeometryRef:        "geometry",
		Exporter:           &memhost.OBJWriter{Scene: s},
		Exclude:            exclude,
		Names:              f.names,
		Report:             f.report,
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) build(t *testing.T, opts Options) *Result {
	t.Helper()
	opts.Shading.Names = f.names
	opts.Report = f.report
	res, err := Build(context.Background(), f.scene, f.snap, opts)
	require.NoError(t, err)
	return res
}

func names(entities []project.Entity) []string {
	out := make([]string, len(entities))
	for i, e := range entities {
		out[i] = e.EntityName()
	}
	return out
}

func instance(t *testing.T, a *project.Assembly, name string) *project.ObjectInstance {
	t.Helper()
	e, ok := a.Lookup(project.KindObjectInstance, name)
	require.True(t, ok, "missing object instance %s", name)
	return e.(*project.ObjectInstance)
}

func TestSingleAssembly(t *testing.T) {
	f := capture(t, sceneDoc, false)
	res := f.build(t, Options{ExportLights: true, Scale: 2})

	require.Len(t, res.Assemblies, 1)
	a := res.Assemblies[0]
	assert.Equal(t, MainAssembly, a.Name)
	assert.True(t, a.Frozen())

	inst := res.Instances[0]
	assert.Equal(t, "assembly_inst", inst.Name)
	assert.Equal(t, MainAssembly, inst.Assembly)
	assert.Equal(t, []math.Mat4{math.UniformScale(2)}, inst.Transforms)

	assert.Equal(t, []string{"ground_groundShape", "ball_ballShape", "bare_bareShape"}, names(a.List(project.KindObject)))

	ball := instance(t, a, "ball_ballShape_inst")
	assert.True(t, ball.Transform.ApproxEqual(math.Translate(1, 0, 0), 1e-12))
	assert.Equal(t, []project.MaterialAssignment{
		{Slot: "0", Side: "front", Material: "gray"},
		{Slot: "0", Side: "back", Material: "gray"},
		{Slot: "1", Side: "front", Material: "oak"},
		{Slot: "1", Side: "back", Material: "oak"},
	}, ball.Assignments)

	// gray is shared by two meshes and built once.
	assert.Equal(t, []string{"gray", "oak"}, names(a.List(project.KindMaterial)))
	assert.Equal(t, 1, a.Len(project.KindTexture))

	bare := instance(t, a, "bare_bareShape_inst")
	assert.Empty(t, bare.Assignments)

	require.Equal(t, 1, a.Len(project.KindLight))
	sun := a.List(project.KindLight)[0].(*project.Light)
	assert.Equal(t, "directional_light", sun.Model)
	assert.Equal(t, "sun_sunShape_exitance", sun.Params[0].Value)
	e, ok := a.Lookup(project.KindColor, "sun_sunShape_exitance")
	require.True(t, ok)
	exitance := e.(*project.Color)
	assert.Equal(t, math.Vec3{X: 1, Y: 1, Z: 0.5}, exitance.Values)
	assert.Equal(t, 1.0, exitance.Multiplier)

	var messages []string
	for _, w := range f.report.Warnings() {
		messages = append(messages, w.Message)
	}
	joined := strings.Join(messages, "\n")
	assert.Contains(t, joined, "areaLight is not supported")
	assert.Contains(t, joined, "no material, exported unshaded")
}

func TestPerRootAssemblies(t *testing.T) {
	f := capture(t, sceneDoc, true)
	res := f.build(t, Options{TransformationBlur: true, ExportLights: true})

	require.Len(t, res.Assemblies, 2)
	main, ball := res.Assemblies[0], res.Assemblies[1]
	assert.Equal(t, MainAssembly, main.Name)
	assert.Equal(t, "ball_assembly", ball.Name)

	assert.Equal(t, []string{"ground_groundShape", "bare_bareShape"}, names(main.List(project.KindObject)))
	assert.Equal(t, []string{"ball_ballShape"}, names(ball.List(project.KindObject)))
	assert.Equal(t, 1, main.Len(project.KindLight))
	assert.Equal(t, 0, ball.Len(project.KindLight))

	inst := res.Instances[1]
	assert.Equal(t, "ball_assembly_inst", inst.Name)
	require.Len(t, inst.Transforms, 2)
	assert.True(t, inst.Transforms[0].ApproxEqual(math.Translate(1, 0, 0), 1e-12))
	assert.True(t, inst.Transforms[1].ApproxEqual(math.Translate(3, 0, 0), 1e-12))

	// The object sits at the root, which the instance already places.
	obj := instance(t, ball, "ball_ballShape_inst")
	assert.True(t, obj.Transform.ApproxEqual(math.Identity(), 1e-12))

	// Shading is rebuilt per assembly.
	_, ok := main.Lookup(project.KindMaterial, "gray")
	assert.True(t, ok)
	_, ok = ball.Lookup(project.KindMaterial, "gray")
	assert.True(t, ok)
	_, ok = main.Lookup(project.KindMaterial, "oak")
	assert.False(t, ok)

	scene := project.NewScene()
	require.NoError(t, res.AddTo(scene))
	assert.Equal(t, []string{"assembly", "ball_assembly"}, names(scene.List(project.KindAssembly)))
}

func TestEmptyMainAssemblyDropped(t *testing.T) {
	f := capture(t, sceneDoc, true, "|ground", "|sun", "|fill", "|bare")
	res := f.build(t, Options{TransformationBlur: true, ExportLights: true})

	require.Len(t, res.Assemblies, 1)
	assert.Equal(t, "ball_assembly", res.Assemblies[0].Name)
}

func TestLightsDisabled(t *testing.T) {
	f := capture(t, sceneDoc, false)
	res := f.build(t, Options{})
	assert.Equal(t, 0, res.Assemblies[0].Len(project.KindLight))
}

const lambertDoc = `
format_version: "1.0"
name: lambert
nodes:
  - name: "|cam"
    type: transform
  - name: "|cam|camShape"
    type: camera
  - name: "|plane"
    type: transform
  - name: "|plane|planeShape"
    type: mesh
    materials: [flat]
    mesh:
      vertices: [[0, 0, 0], [1, 0, 0], [0, 1, 0]]
      faces: [[0, 1, 2]]
  - name: flat
    type: lambert
`

func TestStaticLambertScene(t *testing.T) {
	f := capture(t, lambertDoc, false)
	res := f.build(t, Options{ExportLights: true})

	require.Len(t, res.Assemblies, 1)
	a := res.Assemblies[0]
	assert.Equal(t, 1, a.Len(project.KindColor))
	assert.Equal(t, 1, a.Len(project.KindBSDF))
	assert.Equal(t, 1, a.Len(project.KindMaterial))
	assert.Equal(t, 1, a.Len(project.KindObject))
	assert.Equal(t, 1, a.Len(project.KindObjectInstance))
	assert.Equal(t, 0, a.Len(project.KindLight))
	assert.Empty(t, f.report.Warnings())
}

func TestBuildCancelled(t *testing.T) {
	f := capture(t, sceneDoc, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, f.scene, f.snap, Options{Shading: shading.Options{Names: f.names}})
	assert.ErrorIs(t, err, context.Canceled)
}
