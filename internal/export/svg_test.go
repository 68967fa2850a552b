package export

import (
	"strings"
	"testing"

	"github.com/san-kum/skeldyn/internal/tui"
)

func TestCanvasToSVG(t *testing.T) {
	c := tui.NewCanvas(4, 4)
	c.Set(0, 0)
	c.Set(3, 5)

	svg := CanvasToSVG(c, 4.0)
	if !strings.HasPrefix(svg, "<?xml") {
		t.Errorf("expected XML prolog, got %q", svg[:min(len(svg), 20)])
	}
	if got := strings.Count(svg, "<circle"); got != 2 {
		t.Errorf("expected 2 circles, got %d", got)
	}
	if !strings.Contains(svg, "</svg>") {
		t.Errorf("expected closing svg tag")
	}
}

func TestCanvasToSVGNil(t *testing.T) {
	if got := CanvasToSVG(nil, 1.0); got != "" {
		t.Errorf("expected empty string for nil canvas, got %q", got)
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	points := []Point{{0, 0}, {1, 1}, {2, 0.5}}
	svg := TrajectoryToSVG(points, 200, 100, "#ff0000")
	if !strings.Contains(svg, "stroke=\"#ff0000\"") {
		t.Errorf("expected stroke color in output")
	}
	if !strings.Contains(svg, "width=\"200\"") {
		t.Errorf("expected width attribute")
	}
	if got := strings.Count(svg, " L"); got != 2 {
		t.Errorf("expected 2 line segments, got %d", got)
	}
}

func TestTrajectoryToSVGTooFewPoints(t *testing.T) {
	if got := TrajectoryToSVG([]Point{{1, 2}}, 100, 100, "#fff"); got != "" {
		t.Errorf("expected empty string for single point, got %q", got)
	}
}
