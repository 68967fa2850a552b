package tui

import (
	"strings"
	"testing"
)

func TestCanvasSetAndClear(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	if c.Grid[0][0] == 0x2800 {
		t.Errorf("expected dot at origin")
	}

	c.Clear()
	for _, row := range c.Grid {
		for _, r := range row {
			if r != 0x2800 {
				t.Errorf("expected empty cell after clear, got %q", r)
			}
		}
	}
}

func TestCanvasIgnoresOutOfBounds(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(-1, 0)
	c.Set(0, -5)
	c.Set(100, 0)
	c.Set(0, 100)
	if c.String() != strings.Repeat(string(rune(0x2800))+string(rune(0x2800))+"\n", 2) {
		t.Errorf("expected canvas untouched by out-of-bounds writes")
	}
}

func TestCanvasDrawLineEndpoints(t *testing.T) {
	c := NewCanvas(10, 10)
	c.DrawLine(0, 0, 19, 39)
	if c.Grid[0][0] == 0x2800 {
		t.Errorf("expected line start lit")
	}
	if c.Grid[9][9] == 0x2800 {
		t.Errorf("expected line end lit")
	}
}
