package export

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"go.ngs.io/terrain-api/internal/geometry"
)

// OBJHeader is written as comments at the top of an OBJ file.
type OBJHeader struct {
	RunID      string
	Title      string
	ElevationM float64
	RadiusM    float64
	NorthDeg   int
	Style      string
	Created    time.Time
}

// WriteOBJ writes m as Wavefront OBJ. Vertex colors, when present, follow
// the coordinates on each v line as 0-1 floats.
func WriteOBJ(w io.Writer, m *geometry.Mesh, h OBJHeader) error {
	bw := bufio.NewWriter(w)

	created := h.Created
	if created.IsZero() {
		created = time.Now()
	}
	fmt.Fprintln(bw, "# terrain-api OBJ export")
	if h.RunID != "" {
		fmt.Fprintf(bw, "# run: %s\n", h.RunID)
	}
	for _, line := range strings.Split(h.Title, "\n") {
		if line != "" {
			fmt.Fprintf(bw, "# %s\n", line)
		}
	}
	fmt.Fprintf(bw, "# elevation_m: %s\n", ftoa(h.ElevationM))
	fmt.Fprintf(bw, "# radius_m: %s\n", ftoa(h.RadiusM))
	fmt.Fprintf(bw, "# north_deg: %d\n", h.NorthDeg)
	if h.Style != "" {
		fmt.Fprintf(bw, "# style: %s\n", h.Style)
	}
	fmt.Fprintf(bw, "# created: %s\n", created.UTC().Format(time.RFC3339))
	fmt.Fprintf(bw, "# vertices: %d faces: %d\n", len(m.Vertices), len(m.Faces))
	fmt.Fprintln(bw, "o terrain")

	colored := m.HasColors()
	for i, v := range m.Vertices {
		bw.WriteString("v ")
		bw.WriteString(ftoa(v.X))
		bw.WriteByte(' ')
		bw.WriteString(ftoa(v.Y))
		bw.WriteByte(' ')
		bw.WriteString(ftoa(v.Z))
		if colored {
			c := m.Colors[i]
			fmt.Fprintf(bw, " %.4f %.4f %.4f", float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
		}
		bw.WriteByte('\n')
	}
	for _, f := range m.Faces {
		bw.WriteByte('f')
		for _, idx := range f.Corners() {
			bw.WriteByte(' ')
			bw.WriteString(strconv.Itoa(idx + 1))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(roundToDecimal(v, 6), 'f', -1, 64)
}

// roundToDecimal rounds a value to the specified number of decimal places.
func roundToDecimal(value float64, decimals int) float64 {
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(value*multiplier) / multiplier
}
