package vasp

import (
	"bufio"
	"errors"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// ErrOutcarNotFound indicates the output log is missing
var ErrOutcarNotFound = errors.New("OUTCAR not found")

// OutcarSummary holds the final-state results extracted from an OUTCAR.
// Nil pointer fields mean the quantity never appeared in the log.
type OutcarSummary struct {
	EnergyWithoutEntropy *float64 // last "energy  without entropy" (eV)
	EnergySigma0         *float64 // last "energy(sigma->0)" (eV)
	Converged            bool     // "reached required accuracy" seen
	ElectronicSteps      int      // DAV: iteration count
	IonicSteps           int      // POSITION/TOTAL-FORCE block count
	CPUTimeSec           *float64 // "Total CPU time used (sec)"
}

// Ok reports whether an energy was extracted at all.
func (s *OutcarSummary) Ok() bool {
	return s.EnergyWithoutEntropy != nil
}

var (
	energyRe    = regexp.MustCompile(`energy  without entropy\s*=\s*([-\d.]+)`)
	sigma0Re    = regexp.MustCompile(`energy\(sigma->0\)\s*=\s*([-\d.]+)`)
	cpuTimeRe   = regexp.MustCompile(`Total CPU time used \(sec\):\s*([\d.]+)`)
	ionicStepRe = regexp.MustCompile(`POSITION\s+TOTAL-FORCE`)
)

// ParseOutcar scans an OUTCAR line by line and extracts the final energies,
// convergence flag, step counts, and CPU time. Later occurrences override
// earlier ones, so multi-step runs report their last ionic step.
func ParseOutcar(path string) (*OutcarSummary, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrOutcarNotFound
		}
		return nil, err
	}
	defer file.Close()

	summary := &OutcarSummary{}

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.Contains(line, "reached required accuracy") {
			summary.Converged = true
		}
		if strings.Contains(line, "DAV:") {
			summary.ElectronicSteps++
		}
		if ionicStepRe.MatchString(line) {
			summary.IonicSteps++
		}

		if m := energyRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				summary.EnergyWithoutEntropy = &v
			}
		}
		if m := sigma0Re.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				summary.EnergySigma0 = &v
			}
		}
		if m := cpuTimeRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				summary.CPUTimeSec = &v
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return summary, nil
}
