// Package reference builds the fixed set of reference calculation
// directories (single and double slabs) whose energies feed the interface
// adhesion formula E_interface = E_total - (E1 + E2) + 0.5*(E3 + E4).
// The directory indices are load-bearing: downstream energy extraction
// relies on calc_0000..calc_0003 mapping to E1..E4.
package reference

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vaspflow/vaspflow/internal/config"
	"github.com/vaspflow/vaspflow/internal/utils"
)

// ErrTemplateMissing indicates a required template file is absent
var ErrTemplateMissing = errors.New("required template file not found")

// Entry maps one reference calculation index to its structure file.
type Entry struct {
	Index  int    `yaml:"index"`
	Label  string `yaml:"label"`
	Poscar string `yaml:"poscar"`
}

// mappingFile is the optional per-campaign override of the default entries.
type mappingFile struct {
	References []Entry `yaml:"references"`
}

// DefaultEntries is the standard four-slab reference layout.
func DefaultEntries() []Entry {
	return []Entry{
		{Index: 0, Label: "E1_film", Poscar: "POSCAR_film_slab"},
		{Index: 1, Label: "E2_substrate", Poscar: "POSCAR_sub_slab"},
		{Index: 2, Label: "E3_film_double_slab", Poscar: "POSCAR_film_double_slab"},
		{Index: 3, Label: "E4_substrate_double_slab", Poscar: "POSCAR_sub_double_slab"},
	}
}

// LoadMapping reads an index→POSCAR mapping from a YAML file.
func LoadMapping(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var mf mappingFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("parsing reference mapping: %w", err)
	}
	if len(mf.References) == 0 {
		return nil, fmt.Errorf("reference mapping %s defines no entries", path)
	}
	return mf.References, nil
}

// templateNames lists the required template files and the name each takes
// inside a calculation directory.
func templateNames(cfg *config.Config) map[string]string {
	return map[string]string{
		"POTCAR":             cfg.PseudoFile,
		"INCAR_template":     cfg.ParameterFile,
		"KPOINTS_template":   cfg.KpointsFile,
		"job_template.slurm": cfg.JobScript,
	}
}

// ValidateTemplates checks that every required template exists.
func ValidateTemplates(templatesDir string, cfg *config.Config) error {
	for name := range templateNames(cfg) {
		if !utils.FileExists(filepath.Join(templatesDir, name)) {
			return fmt.Errorf("%w: %s", ErrTemplateMissing, filepath.Join(templatesDir, name))
		}
	}
	return nil
}

// Setup creates the calculations directory under refDir and populates one
// calc_%04d directory per entry: the entry's POSCAR from refDir/poscars plus
// the four template files. Entries whose POSCAR is missing are reported and
// counted as failed; the rest still get set up. With dryRun set, nothing is
// written.
func Setup(refDir string, templatesDir string, entries []Entry, cfg *config.Config, dryRun bool) (successful, failed int, err error) {
	if !utils.DirExists(refDir) {
		return 0, 0, fmt.Errorf("reference directory not found: %s", refDir)
	}
	poscarsDir := filepath.Join(refDir, "poscars")
	if !utils.DirExists(poscarsDir) {
		return 0, 0, fmt.Errorf("poscars directory not found: %s", poscarsDir)
	}
	if err := ValidateTemplates(templatesDir, cfg); err != nil {
		return 0, 0, err
	}

	calcsDir := filepath.Join(refDir, "calculations")
	if !dryRun {
		if err := utils.EnsureDir(calcsDir); err != nil {
			return 0, 0, err
		}
	}

	for _, entry := range entries {
		calcName := fmt.Sprintf("calc_%04d", entry.Index)
		calcPath := filepath.Join(calcsDir, calcName)
		poscarPath := filepath.Join(poscarsDir, entry.Poscar)

		if !utils.FileExists(poscarPath) {
			utils.PrintWarning("%s (%s): POSCAR not found: %s", calcName, entry.Label, entry.Poscar)
			failed++
			continue
		}

		utils.PrintMessage("Setting up %s (%s) from %s",
			utils.StyleName(calcName), entry.Label, entry.Poscar)

		if dryRun {
			successful++
			continue
		}

		if err := utils.EnsureDir(calcPath); err != nil {
			return successful, failed, err
		}
		if err := utils.CopyFile(poscarPath, filepath.Join(calcPath, cfg.StructureFile)); err != nil {
			return successful, failed, err
		}
		for template, target := range templateNames(cfg) {
			src := filepath.Join(templatesDir, template)
			if err := utils.CopyFile(src, filepath.Join(calcPath, target)); err != nil {
				return successful, failed, err
			}
		}
		successful++
	}

	return successful, failed, nil
}
