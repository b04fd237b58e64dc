package grid

import "testing"

func TestDenseValues(t *testing.T) {
	g := NewDense(2, 3)
	g.SetValue(1, 2, "temp", "3.5")

	if g.Rows() != 2 || g.Cols() != 3 {
		t.Fatalf("unexpected dimensions %dx%d", g.Rows(), g.Cols())
	}
	if got := g.Cell(1, 2).EncodedValue("temp"); got != "3.5" {
		t.Errorf("expected 3.5, got %q", got)
	}
	if got := g.Cell(0, 0).EncodedValue("temp"); got != "" {
		t.Errorf("unset cell should be empty, got %q", got)
	}
}

func TestDenseEmptyFieldSelectsPrimary(t *testing.T) {
	g := NewDense(1, 1)
	g.SetValue(0, 0, "value", "7")
	if got := g.Cell(0, 0).EncodedValue(""); got != "7" {
		t.Errorf("expected the primary field, got %q", got)
	}
}

func TestDenseColors(t *testing.T) {
	g := NewDense(1, 2)
	if _, ok := g.Cell(0, 0).DefaultColor(""); ok {
		t.Error("cells start without a color")
	}
	g.SetColor(0, 1, Color{R: 1, G: 2, B: 3})
	c, ok := g.Cell(0, 1).DefaultColor("temp")
	if !ok || c != (Color{R: 1, G: 2, B: 3}) {
		t.Errorf("expected the stored color, got %v (ok=%v)", c, ok)
	}
}
