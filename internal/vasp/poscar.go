// Package vasp implements the minimal VASP file handling the workflow needs:
// POSCAR geometry reading for dipole-center calculation, INCAR tag editing,
// and OUTCAR result extraction. It is deliberately not a general VASP parser.
package vasp

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vaspflow/vaspflow/internal/utils"
)

var (
	// ErrInvalidPoscar indicates the structure file is malformed
	ErrInvalidPoscar = errors.New("invalid POSCAR")

	// ErrNoSpecies indicates a VASP4-style POSCAR without element symbols
	ErrNoSpecies = errors.New("POSCAR has no element symbol line")
)

// Poscar holds the parts of a structure file needed for the dipole center.
type Poscar struct {
	Comment    string
	Scale      float64
	Lattice    [3][3]float64 // row vectors, scaled
	Species    []string      // element symbol per atom, expanded from counts
	FracCoords [][3]float64  // fractional coordinates per atom
}

// ParsePoscar reads a VASP5-format POSCAR. Cartesian coordinates are
// converted to fractional via the inverse lattice.
func ParsePoscar(path string) (*Poscar, error) {
	lines, err := utils.ReadFileLines(path)
	if err != nil {
		return nil, err
	}
	if len(lines) < 8 {
		return nil, fmt.Errorf("%w: file too short", ErrInvalidPoscar)
	}

	p := &Poscar{Comment: strings.TrimSpace(lines[0])}

	p.Scale, err = strconv.ParseFloat(strings.TrimSpace(lines[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad scale factor: %v", ErrInvalidPoscar, err)
	}

	for i := 0; i < 3; i++ {
		vec, err := parseFloats(lines[2+i], 3)
		if err != nil {
			return nil, fmt.Errorf("%w: bad lattice vector on line %d: %v", ErrInvalidPoscar, 3+i, err)
		}
		for j := 0; j < 3; j++ {
			p.Lattice[i][j] = vec[j] * p.Scale
		}
	}

	// Line 6: element symbols (VASP5). A leading integer means VASP4 format,
	// which carries no symbols and cannot be mass-weighted.
	symbols := strings.Fields(lines[5])
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: empty species line", ErrInvalidPoscar)
	}
	if _, err := strconv.Atoi(symbols[0]); err == nil {
		return nil, ErrNoSpecies
	}

	counts, err := parseInts(lines[6])
	if err != nil || len(counts) != len(symbols) {
		return nil, fmt.Errorf("%w: species counts do not match symbols", ErrInvalidPoscar)
	}

	natoms := 0
	for i, c := range counts {
		for k := 0; k < c; k++ {
			p.Species = append(p.Species, symbols[i])
		}
		natoms += c
	}

	// Optional "Selective dynamics" line before the coordinate mode line.
	cursor := 7
	mode := strings.TrimSpace(lines[cursor])
	if len(mode) > 0 && (mode[0] == 'S' || mode[0] == 's') {
		cursor++
		if cursor >= len(lines) {
			return nil, fmt.Errorf("%w: missing coordinate mode", ErrInvalidPoscar)
		}
		mode = strings.TrimSpace(lines[cursor])
	}
	if mode == "" {
		return nil, fmt.Errorf("%w: missing coordinate mode", ErrInvalidPoscar)
	}
	cartesian := mode[0] == 'C' || mode[0] == 'c' || mode[0] == 'K' || mode[0] == 'k'
	cursor++

	if len(lines) < cursor+natoms {
		return nil, fmt.Errorf("%w: expected %d coordinate lines", ErrInvalidPoscar, natoms)
	}

	var inv [3][3]float64
	if cartesian {
		inv, err = invert3x3(p.Lattice)
		if err != nil {
			return nil, fmt.Errorf("%w: singular lattice", ErrInvalidPoscar)
		}
	}

	for i := 0; i < natoms; i++ {
		coords, err := parseFloats(lines[cursor+i], 3)
		if err != nil {
			return nil, fmt.Errorf("%w: bad coordinates for atom %d: %v", ErrInvalidPoscar, i+1, err)
		}
		var frac [3]float64
		if cartesian {
			// Cartesian positions are in the scaled lattice frame
			cart := [3]float64{coords[0] * p.Scale, coords[1] * p.Scale, coords[2] * p.Scale}
			for j := 0; j < 3; j++ {
				frac[j] = cart[0]*inv[0][j] + cart[1]*inv[1][j] + cart[2]*inv[2][j]
			}
		} else {
			frac = [3]float64{coords[0], coords[1], coords[2]}
		}
		p.FracCoords = append(p.FracCoords, frac)
	}

	return p, nil
}

// Center returns the weighted average of the fractional coordinates.
// With massWeighted set, atoms are weighted by their standard atomic weight;
// otherwise every atom weighs the same (geometric center).
func (p *Poscar) Center(massWeighted bool) ([3]float64, error) {
	if len(p.FracCoords) == 0 {
		return [3]float64{}, fmt.Errorf("%w: no atoms", ErrInvalidPoscar)
	}

	var center [3]float64
	var totalWeight float64

	for i, frac := range p.FracCoords {
		weight := 1.0
		if massWeighted {
			mass, ok := AtomicMass(p.Species[i])
			if !ok {
				return [3]float64{}, fmt.Errorf("unknown element %q in POSCAR", p.Species[i])
			}
			weight = mass
		}
		for j := 0; j < 3; j++ {
			center[j] += frac[j] * weight
		}
		totalWeight += weight
	}

	for j := 0; j < 3; j++ {
		center[j] /= totalWeight
	}
	return center, nil
}

// FormatDipole renders a center as the DIPOL tag value, 5 decimal places.
func FormatDipole(center [3]float64) string {
	return fmt.Sprintf("%.5f %.5f %.5f", center[0], center[1], center[2])
}

func parseFloats(line string, want int) ([]float64, error) {
	fields := strings.Fields(line)
	if len(fields) < want {
		return nil, fmt.Errorf("expected %d values, got %d", want, len(fields))
	}
	out := make([]float64, want)
	for i := 0; i < want; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseInts(line string) ([]int, error) {
	fields := strings.Fields(line)
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// invert3x3 inverts a row-vector lattice matrix by adjugate.
func invert3x3(m [3][3]float64) ([3][3]float64, error) {
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	if det == 0 {
		return [3][3]float64{}, errors.New("singular matrix")
	}

	var inv [3][3]float64
	inv[0][0] = (m[1][1]*m[2][2] - m[1][2]*m[2][1]) / det
	inv[0][1] = (m[0][2]*m[2][1] - m[0][1]*m[2][2]) / det
	inv[0][2] = (m[0][1]*m[1][2] - m[0][2]*m[1][1]) / det
	inv[1][0] = (m[1][2]*m[2][0] - m[1][0]*m[2][2]) / det
	inv[1][1] = (m[0][0]*m[2][2] - m[0][2]*m[2][0]) / det
	inv[1][2] = (m[0][2]*m[1][0] - m[0][0]*m[1][2]) / det
	inv[2][0] = (m[1][0]*m[2][1] - m[1][1]*m[2][0]) / det
	inv[2][1] = (m[0][1]*m[2][0] - m[0][0]*m[2][1]) / det
	inv[2][2] = (m[0][0]*m[1][1] - m[0][1]*m[1][0]) / det
	return inv, nil
}
