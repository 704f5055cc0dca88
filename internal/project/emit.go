package project

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Faultbox/seedexport/internal/markup"
	"github.com/Faultbox/seedexport/pkg/math"
)

const (
	matrixPrecision = 15
	colorPrecision  = 6
)

// Emit writes p as project markup. generator is written into the header
// comment.
func Emit(w io.Writer, p *Project, generator string) error {
	if p.Scene == nil || p.Frame == nil {
		return fmt.Errorf("emit: project needs a scene and a frame")
	}

	mw := markup.NewWriter(w)
	mw.Header(generator)
	mw.Open("project")

	mw.Open("scene")
	if p.Scene.Camera != nil {
		emit(mw, p.Scene.Camera)
	}
	emitList(mw, &p.Scene.entities, sceneOrder)
	mw.Close("scene")

	mw.Open("output")
	emit(mw, p.Frame)
	mw.Close("output")

	mw.Open("configurations")
	for _, c := range p.Configurations {
		emit(mw, c)
	}
	mw.Close("configurations")

	mw.Close("project")
	return mw.Flush()
}

func emitList(mw *markup.Writer, c *entities, order []Kind) {
	for _, k := range order {
		for _, e := range c.List(k) {
			emit(mw, e)
		}
	}
}

// emit writes one entity and everything it contains.
func emit(mw *markup.Writer, e Entity) {
	switch e := e.(type) {
	case *Color:
		mw.Open("color", markup.A("name", e.Name))
		mw.Parameter("color_space", e.ColorSpace)
		mw.Parameter("multiplier", markup.Float(e.Multiplier))
		mw.Parameter("alpha", markup.Float(e.Alpha))
		block(mw, "values", markup.Fixed(colorPrecision, e.Values.X, e.Values.Y, e.Values.Z))
		block(mw, "alpha", markup.Fixed(colorPrecision, e.Alpha))
		mw.Close("color")

	case *Texture:
		mw.Open("texture", markup.A("name", e.Name), markup.A("model", e.Model))
		mw.Parameter("color_space", e.ColorSpace)
		mw.Parameter("filename", e.FileName)
		mw.Close("texture")

	case *TextureInstance:
		mw.Open("texture_instance", markup.A("name", e.Name), markup.A("texture", e.Texture))
		params(mw, e.Params)
		mw.Close("texture_instance")

	case *ShadingNode:
		tag := e.Type.String()
		mw.Open(tag, markup.A("name", e.Name), markup.A("model", e.Model))
		params(mw, e.Params)
		mw.Close(tag)

	case *Material:
		mw.Open("material", markup.A("name", e.Name), markup.A("model", e.Model))
		optional(mw, "bsdf", e.BSDF)
		optional(mw, "edf", e.EDF)
		optional(mw, "surface_shader", e.SurfaceShader)
		optional(mw, "alpha_map", e.AlphaMap)
		optional(mw, "normal_map", e.NormalMap)
		mw.Close("material")

	case *Light:
		mw.Open("light", markup.A("name", e.Name), markup.A("model", e.Model))
		params(mw, e.Params)
		transform(mw, 0, e.Transform)
		mw.Close("light")

	case *Object:
		mw.Open("object", markup.A("name", e.Name), markup.A("model", e.Model))
		if len(e.Files) == 1 {
			mw.Parameter("filename", e.Files[0])
		} else {
			mw.Open("parameters", markup.A("name", "filename"))
			for i, f := range e.Files {
				mw.Parameter(fmt.Sprintf("%03d", i), f)
			}
			mw.Close("parameters")
		}
		mw.Close("object")

	case *ObjectInstance:
		mw.Open("object_instance", markup.A("name", e.Name), markup.A("object", e.Object))
		transform(mw, 0, e.Transform)
		for _, a := range e.Assignments {
			mw.Element("assign_material",
				markup.A("slot", a.Slot),
				markup.A("side", a.Side),
				markup.A("material", a.Material))
		}
		mw.Close("object_instance")

	case *Assembly:
		mw.Open("assembly", markup.A("name", e.Name))
		emitList(mw, &e.entities, assemblyOrder)
		mw.Close("assembly")

	case *AssemblyInstance:
		mw.Open("assembly_instance", markup.A("name", e.Name), markup.A("assembly", e.Assembly))
		for i, m := range e.Transforms {
			transform(mw, i, m)
		}
		mw.Close("assembly_instance")

	case *EnvironmentEDF:
		mw.Open("environment_edf", markup.A("name", e.Name), markup.A("model", e.Model))
		params(mw, e.Params)
		mw.Close("environment_edf")

	case *EnvironmentShader:
		mw.Open("environment_shader", markup.A("name", e.Name), markup.A("model", e.Model))
		mw.Parameter("environment_edf", e.EnvironmentEDF)
		mw.Close("environment_shader")

	case *Environment:
		mw.Open("environment", markup.A("name", e.Name), markup.A("model", e.Model))
		mw.Parameter("environment_edf", e.EnvironmentEDF)
		mw.Parameter("environment_shader", e.EnvironmentShader)
		mw.Close("environment")

	case *Camera:
		mw.Open("camera", markup.A("name", e.Name), markup.A("model", e.Model))
		params(mw, e.Params)
		for i, m := range e.Transforms {
			transform(mw, i, m)
		}
		mw.Close("camera")

	case *Frame:
		mw.Open("frame", markup.A("name", e.Name))
		mw.Parameter("camera", e.Camera)
		mw.Parameter("color_space", e.ColorSpace)
		mw.Parameter("resolution", markup.Int(e.Width)+" "+markup.Int(e.Height))
		mw.Close("frame")

	case *Configuration:
		attrs := []markup.Attr{markup.A("name", e.Name), markup.A("base", e.Base)}
		if len(e.Params) == 0 && len(e.Groups) == 0 {
			mw.Element("configuration", attrs...)
			return
		}
		mw.Open("configuration", attrs...)
		params(mw, e.Params)
		for _, g := range e.Groups {
			mw.Open("parameters", markup.A("name", g.Name))
			params(mw, g.Params)
			mw.Close("parameters")
		}
		mw.Close("configuration")

	default:
		panic(fmt.Sprintf("project: no emitter for %T", e))
	}
}

func params(mw *markup.Writer, ps []Param) {
	for _, p := range ps {
		mw.Parameter(p.Name, p.Value)
	}
}

func optional(mw *markup.Writer, name, value string) {
	if value != "" {
		mw.Parameter(name, value)
	}
}

func block(mw *markup.Writer, tag, line string) {
	mw.Open(tag)
	mw.Line(line)
	mw.Close(tag)
}

func transform(mw *markup.Writer, time int, m math.Mat4) {
	mw.Open("transform", markup.A("time", strconv.Itoa(time)))
	mw.Open("matrix")
	for i := 0; i < 4; i++ {
		r := m.Row(i)
		mw.Line(markup.Fixed(matrixPrecision, r[0], r[1], r[2], r[3]))
	}
	mw.Close("matrix")
	mw.Close("transform")
}
