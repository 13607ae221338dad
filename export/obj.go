// Package export writes tessellated solids to interchange formats.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bloodmagesoftware/mesher/tess"
	"gonum.org/v1/gonum/spatial/r3"
)

// WriteOBJ writes b as a Wavefront OBJ object called name. Coincident
// positions share one vertex record; every triangle gets its own normal
// record so the result stays flat shaded.
func WriteOBJ(w io.Writer, name string, b *tess.Buffer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d triangles\n", b.Triangles())
	if name != "" {
		fmt.Fprintf(bw, "o %s\n", name)
	}

	index := make(map[r3.Vec]int, len(b.Positions))
	refs := make([]int, len(b.Positions))
	for i, p := range b.Positions {
		n, ok := index[p]
		if !ok {
			n = len(index) + 1
			index[p] = n
			fmt.Fprintf(bw, "v %s %s %s\n", num(p.X), num(p.Y), num(p.Z))
		}
		refs[i] = n
	}

	for i := 0; i+2 < len(b.Normals); i += 3 {
		n := b.Normals[i]
		fmt.Fprintf(bw, "vn %s %s %s\n", num(n.X), num(n.Y), num(n.Z))
	}

	for i := 0; i+2 < len(refs); i += 3 {
		t := i/3 + 1
		fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", refs[i], t, refs[i+1], t, refs[i+2], t)
	}

	return bw.Flush()
}

// WriteOBJFile writes b to path, creating parent directories as needed.
func WriteOBJFile(path, name string, b *tess.Buffer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := WriteOBJ(f, name, b); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func num(x float64) string {
	if x == 0 {
		// Avoids "-0".
		return "0"
	}
	return strconv.FormatFloat(x, 'g', -1, 64)
}
