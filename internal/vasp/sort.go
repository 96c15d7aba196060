package vasp

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ElementGroup is one contiguous species block of a POSCAR.
type ElementGroup struct {
	Symbol string
	Count  int
}

// Groups returns the contiguous element blocks in atom order.
// An interleaved structure yields one group per run, e.g. Nb Sn Nb Sn
// gives four groups of one atom each.
func (p *Poscar) Groups() []ElementGroup {
	var groups []ElementGroup
	for _, s := range p.Species {
		if n := len(groups); n > 0 && groups[n-1].Symbol == s {
			groups[n-1].Count++
			continue
		}
		groups = append(groups, ElementGroup{Symbol: s, Count: 1})
	}
	return groups
}

// GroupedByElement reports whether every element already forms a single
// contiguous block.
func (p *Poscar) GroupedByElement() bool {
	seen := map[string]bool{}
	for _, g := range p.Groups() {
		if seen[g.Symbol] {
			return false
		}
		seen[g.Symbol] = true
	}
	return true
}

// SortByElement reorders atoms so each element forms one contiguous block.
// Element blocks follow first appearance and atoms keep their relative
// order within a block, so coordinates stay paired with their species.
func (p *Poscar) SortByElement() {
	var order []string
	seen := map[string]bool{}
	for _, s := range p.Species {
		if !seen[s] {
			seen[s] = true
			order = append(order, s)
		}
	}

	species := make([]string, 0, len(p.Species))
	coords := make([][3]float64, 0, len(p.FracCoords))
	for _, sym := range order {
		for i, s := range p.Species {
			if s == sym {
				species = append(species, s)
				coords = append(coords, p.FracCoords[i])
			}
		}
	}
	p.Species = species
	p.FracCoords = coords
}

// Composition renders the grouped formula, e.g. "Nb4 Sn4".
func (p *Poscar) Composition() string {
	groups := p.Groups()
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = fmt.Sprintf("%s%d", g.Symbol, g.Count)
	}
	return strings.Join(parts, " ")
}

// Write renders the structure as a VASP5 direct-coordinate POSCAR.
// The lattice is held pre-scaled, so a unit scale factor is written.
// Selective dynamics flags from the source file are not carried over.
func (p *Poscar) Write(path string) error {
	var b strings.Builder
	fmt.Fprintln(&b, p.Comment)
	fmt.Fprintln(&b, "1.0")
	for i := 0; i < 3; i++ {
		fmt.Fprintf(&b, "  %18.12f %18.12f %18.12f\n",
			p.Lattice[i][0], p.Lattice[i][1], p.Lattice[i][2])
	}

	groups := p.Groups()
	symbols := make([]string, len(groups))
	counts := make([]string, len(groups))
	for i, g := range groups {
		symbols[i] = g.Symbol
		counts[i] = strconv.Itoa(g.Count)
	}
	fmt.Fprintln(&b, strings.Join(symbols, " "))
	fmt.Fprintln(&b, strings.Join(counts, " "))

	fmt.Fprintln(&b, "Direct")
	for _, c := range p.FracCoords {
		fmt.Fprintf(&b, "  %18.12f %18.12f %18.12f\n", c[0], c[1], c[2])
	}

	return os.WriteFile(path, []byte(b.String()), 0644)
}
