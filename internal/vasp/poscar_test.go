package vasp

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writePoscar(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "POSCAR")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write POSCAR: %v", err)
	}
	return path
}

const cubicDirect = `MgO slab
1.0
4.0 0.0 0.0
0.0 4.0 0.0
0.0 0.0 4.0
Mg O
1 1
Direct
0.0 0.0 0.0
0.5 0.5 0.5
`

func TestParsePoscarDirect(t *testing.T) {
	p, err := ParsePoscar(writePoscar(t, cubicDirect))
	if err != nil {
		t.Fatalf("ParsePoscar: %v", err)
	}

	if p.Comment != "MgO slab" {
		t.Errorf("comment = %q", p.Comment)
	}
	if p.Lattice[0][0] != 4.0 || p.Lattice[1][1] != 4.0 || p.Lattice[2][2] != 4.0 {
		t.Errorf("lattice diagonal = %v %v %v, want 4.0",
			p.Lattice[0][0], p.Lattice[1][1], p.Lattice[2][2])
	}
	if len(p.Species) != 2 || p.Species[0] != "Mg" || p.Species[1] != "O" {
		t.Errorf("species = %v, want [Mg O]", p.Species)
	}
	if len(p.FracCoords) != 2 {
		t.Fatalf("got %d coordinate sets, want 2", len(p.FracCoords))
	}
	if p.FracCoords[1] != [3]float64{0.5, 0.5, 0.5} {
		t.Errorf("atom 2 frac = %v, want 0.5 0.5 0.5", p.FracCoords[1])
	}
}

func TestParsePoscarCartesian(t *testing.T) {
	// Scale 2.0 with a unit-doubled lattice: cartesian (1,1,1) scales to
	// (2,2,2) in a 4 Angstrom box, i.e. fractional (0.5,0.5,0.5).
	content := `cubic
2.0
2.0 0.0 0.0
0.0 2.0 0.0
0.0 0.0 2.0
Si
1
Cartesian
1.0 1.0 1.0
`
	p, err := ParsePoscar(writePoscar(t, content))
	if err != nil {
		t.Fatalf("ParsePoscar: %v", err)
	}

	for j, got := range p.FracCoords[0] {
		if math.Abs(got-0.5) > 1e-12 {
			t.Errorf("frac[%d] = %v, want 0.5", j, got)
		}
	}
}

func TestParsePoscarSelectiveDynamics(t *testing.T) {
	content := `slab
1.0
4.0 0.0 0.0
0.0 4.0 0.0
0.0 0.0 4.0
O
2
Selective dynamics
Direct
0.0 0.0 0.1 F F F
0.0 0.0 0.9 T T T
`
	p, err := ParsePoscar(writePoscar(t, content))
	if err != nil {
		t.Fatalf("ParsePoscar: %v", err)
	}
	if len(p.FracCoords) != 2 {
		t.Fatalf("got %d atoms, want 2", len(p.FracCoords))
	}
	if p.FracCoords[0][2] != 0.1 || p.FracCoords[1][2] != 0.9 {
		t.Errorf("z coords = %v, %v, want 0.1, 0.9", p.FracCoords[0][2], p.FracCoords[1][2])
	}
}

func TestParsePoscarVasp4HasNoSpecies(t *testing.T) {
	content := `old format
1.0
4.0 0.0 0.0
0.0 4.0 0.0
0.0 0.0 4.0
2
Direct
0.0 0.0 0.0
0.5 0.5 0.5
`
	_, err := ParsePoscar(writePoscar(t, content))
	if !errors.Is(err, ErrNoSpecies) {
		t.Errorf("error = %v, want ErrNoSpecies", err)
	}
}

func TestParsePoscarErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"too short", "just\na few\nlines\n"},
		{"bad scale", "c\nnot-a-number\n1 0 0\n0 1 0\n0 0 1\nSi\n1\nDirect\n0 0 0\n"},
		{"count mismatch", "c\n1.0\n1 0 0\n0 1 0\n0 0 1\nSi O\n1\nDirect\n0 0 0\n"},
		{"missing coords", "c\n1.0\n1 0 0\n0 1 0\n0 0 1\nSi\n3\nDirect\n0 0 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePoscar(writePoscar(t, tt.content))
			if !errors.Is(err, ErrInvalidPoscar) {
				t.Errorf("error = %v, want ErrInvalidPoscar", err)
			}
		})
	}
}

func TestCenterGeometric(t *testing.T) {
	p, err := ParsePoscar(writePoscar(t, cubicDirect))
	if err != nil {
		t.Fatalf("ParsePoscar: %v", err)
	}

	center, err := p.Center(false)
	if err != nil {
		t.Fatalf("Center: %v", err)
	}
	for j, got := range center {
		if math.Abs(got-0.25) > 1e-12 {
			t.Errorf("center[%d] = %v, want 0.25", j, got)
		}
	}
}

func TestCenterMassWeighted(t *testing.T) {
	p, err := ParsePoscar(writePoscar(t, cubicDirect))
	if err != nil {
		t.Fatalf("ParsePoscar: %v", err)
	}

	center, err := p.Center(true)
	if err != nil {
		t.Fatalf("Center: %v", err)
	}

	mMg, _ := AtomicMass("Mg")
	mO, _ := AtomicMass("O")
	want := 0.5 * mO / (mMg + mO) // Mg sits at the origin

	for j, got := range center {
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("center[%d] = %v, want %v", j, got, want)
		}
	}
}

func TestCenterUnknownElement(t *testing.T) {
	content := `mystery
1.0
4.0 0.0 0.0
0.0 4.0 0.0
0.0 0.0 4.0
Xx
1
Direct
0.5 0.5 0.5
`
	p, err := ParsePoscar(writePoscar(t, content))
	if err != nil {
		t.Fatalf("ParsePoscar: %v", err)
	}

	if _, err := p.Center(true); err == nil {
		t.Error("mass-weighted center with an unknown element should fail")
	}
	if _, err := p.Center(false); err != nil {
		t.Errorf("geometric center should not need masses: %v", err)
	}
}

func TestFormatDipole(t *testing.T) {
	got := FormatDipole([3]float64{0.5, 0.123456789, 1.0 / 3.0})
	want := "0.50000 0.12346 0.33333"
	if got != want {
		t.Errorf("FormatDipole = %q, want %q", got, want)
	}
}

func TestAtomicMass(t *testing.T) {
	if m, ok := AtomicMass("H"); !ok || m < 1.0 || m > 1.1 {
		t.Errorf("AtomicMass(H) = %v, %v", m, ok)
	}
	if _, ok := AtomicMass("Xx"); ok {
		t.Error("AtomicMass should not know element Xx")
	}
}
