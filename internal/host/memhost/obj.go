package memhost

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Faultbox/seedexport/internal/host"
	"github.com/Faultbox/seedexport/internal/naming"
)

// OBJWriter exports memhost meshes as Wavefront OBJ files in object space
// at the scene's current time.
type OBJWriter struct {
	Scene *Scene
}

// ExportMesh implements host.MeshExporter.
func (w *OBJWriter) ExportMesh(name, dest string, overwrite bool) (string, error) {
	n, err := w.Scene.lookup(name)
	if err != nil {
		return "", err
	}
	if n.kind != host.KindMesh {
		return "", host.NewQueryError(name, "", fmt.Errorf("%w: %s is not a mesh", host.ErrTypeMismatch, n.typeName))
	}
	if !overwrite {
		if _, err := os.Stat(dest); err == nil {
			return dest, nil
		}
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", err
	}

	f, err := os.Create(dest)
	if err != nil {
		return "", err
	}
	bw := bufio.NewWriter(f)

	fmt.Fprintf(bw, "# %s at time %g\n", name, w.Scene.time)
	fmt.Fprintf(bw, "o %s\n", naming.ShortName(name))
	if n.mesh != nil {
		for _, v := range n.mesh.at(w.Scene.time) {
			fmt.Fprintf(bw, "v %s %s %s\n", num(v.X), num(v.Y), num(v.Z))
		}
		for _, face := range n.mesh.faces {
			bw.WriteString("f")
			for _, idx := range face {
				bw.WriteString(" " + strconv.Itoa(idx+1))
			}
			bw.WriteString("\n")
		}
	}

	if err := bw.Flush(); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return dest, nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
