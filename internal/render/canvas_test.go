package render

import (
	"strings"
	"testing"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(0, 0)

	rows := strings.Split(strings.TrimRight(c.String(), "\n"), "\n")
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	first := []rune(rows[0])
	if first[0] != 0x2801 {
		t.Errorf("expected the top-left dot, got %U", first[0])
	}
	if first[1] != 0x2800 {
		t.Errorf("expected an empty cell, got %U", first[1])
	}
}

func TestCanvasSetOutOfRange(t *testing.T) {
	c := NewCanvas(2, 2)
	c.Set(-1, 0)
	c.Set(0, -1)
	c.Set(4, 0)
	c.Set(0, 8)
	if strings.ContainsFunc(c.String(), func(r rune) bool { return r != 0x2800 && r != '\n' }) {
		t.Error("out-of-range sets must not light anything")
	}
}

func TestCanvasClear(t *testing.T) {
	c := NewCanvas(3, 3)
	c.DrawLine(0, 0, 5, 11)
	c.Clear()
	if strings.ContainsFunc(c.String(), func(r rune) bool { return r != 0x2800 && r != '\n' }) {
		t.Error("clear must empty every cell")
	}
}

func TestCanvasDrawLineHorizontal(t *testing.T) {
	c := NewCanvas(4, 1)
	c.DrawLine(0, 0, 7, 0)

	for _, r := range strings.TrimRight(c.String(), "\n") {
		// Both top-row sub-pixels of every cell light up.
		if r != 0x2800|0x1|0x8 {
			t.Errorf("expected a full top line, got %U", r)
		}
	}
}

func TestCanvasDrawLinePoint(t *testing.T) {
	c := NewCanvas(2, 2)
	c.DrawLine(1, 1, 1, 1)
	if !strings.ContainsRune(c.String(), 0x2800|0x10) {
		t.Error("a degenerate line should still light its point")
	}
}
