package export

import (
	"strings"
	"testing"

	"github.com/san-kum/galstream/internal/linalg"
	"github.com/san-kum/galstream/internal/phasespace"
)

func testData() (*phasespace.MockStream, *phasespace.Orbit) {
	stream := &phasespace.MockStream{
		Q: []linalg.Vec3{{X: 10, Y: 1}, {X: 11, Y: -1}, {X: 9, Y: 2}},
		P: []linalg.Vec3{{Y: 0.2}, {Y: 0.21}, {Y: 0.19}},
	}
	orbit := &phasespace.Orbit{
		W: []phasespace.W{
			phasespace.NewW(linalg.Vec3{X: 10}, linalg.Vec3{Y: 0.2}),
			phasespace.NewW(linalg.Vec3{X: 7, Y: 7}, linalg.Vec3{X: -0.14, Y: 0.14}),
			phasespace.NewW(linalg.Vec3{X: 0, Y: 10}, linalg.Vec3{X: -0.2}),
		},
		T: []float64{0, 25, 50},
	}
	return stream, orbit
}

func TestStreamSVG(t *testing.T) {
	stream, orbit := testData()
	svg := StreamSVG(stream, orbit, 800, 600)

	if !strings.HasPrefix(svg, `<?xml version="1.0"`) {
		t.Error("missing XML header")
	}
	if !strings.Contains(svg, "<path") {
		t.Error("missing orbit path")
	}
	if got := strings.Count(svg, "<circle"); got != stream.Len() {
		t.Errorf("%d particle dots, want %d", got, stream.Len())
	}
	if !strings.HasSuffix(svg, "</svg>") {
		t.Error("unterminated SVG")
	}
}

func TestOrbitSVG(t *testing.T) {
	_, orbit := testData()
	svg := OrbitSVG(orbit, 400, 300, "#00ff88")

	if !strings.Contains(svg, `stroke="#00ff88"`) {
		t.Error("stroke color not applied")
	}
	if got := strings.Count(svg, " L"); got != orbit.Len()-1 {
		t.Errorf("%d line segments, want %d", got, orbit.Len()-1)
	}
}

func TestOrbitSVGTooShort(t *testing.T) {
	orbit := &phasespace.Orbit{
		W: []phasespace.W{phasespace.NewW(linalg.Vec3{X: 1}, linalg.Vec3{})},
		T: []float64{0},
	}
	if svg := OrbitSVG(orbit, 400, 300, "#fff"); svg != "" {
		t.Error("expected empty output for a single point")
	}
}

func TestDegenerateBoundsDoNotDivideByZero(t *testing.T) {
	// All particles at one point still renders.
	stream := &phasespace.MockStream{
		Q: []linalg.Vec3{{X: 5, Y: 5}, {X: 5, Y: 5}},
		P: []linalg.Vec3{{}, {}},
	}
	orbit := &phasespace.Orbit{
		W: []phasespace.W{phasespace.NewW(linalg.Vec3{X: 5, Y: 5}, linalg.Vec3{})},
		T: []float64{0},
	}
	svg := StreamSVG(stream, orbit, 100, 100)
	if !strings.Contains(svg, "<circle") {
		t.Error("expected particle dots")
	}
	if strings.Contains(svg, "NaN") {
		t.Error("NaN leaked into coordinates")
	}
}
