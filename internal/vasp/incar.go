package vasp

import (
	"os"
	"strings"

	"github.com/vaspflow/vaspflow/internal/utils"
)

const dipoleComment = "# Defining the location of the center of the dipole moment (center of mass)"

// DipoleUpdate describes the outcome of an INCAR DIPOL rewrite.
type DipoleUpdate struct {
	Updated  bool   // file was (or would be) modified
	Skipped  bool   // existing non-placeholder value kept without force
	OldValue string // previous DIPOL value, if any
}

// UpdateDipole rewrites the uncommented DIPOL tag in the INCAR at path to the
// given value, preserving any inline comment on the existing line. When no
// DIPOL line exists, one is appended. An existing non-placeholder value is
// kept unless force is set.
//
// With dryRun set, the file is left untouched and the returned DipoleUpdate
// describes what would have happened.
func UpdateDipole(path string, value string, placeholder string, force bool, dryRun bool) (DipoleUpdate, error) {
	lines, err := utils.ReadFileLines(path)
	if err != nil {
		return DipoleUpdate{}, err
	}

	var result DipoleUpdate
	found := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || !strings.HasPrefix(trimmed, "DIPOL") {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "DIPOL"))
		if !strings.HasPrefix(rest, "=") {
			continue
		}
		found = true

		comment := dipoleComment
		if idx := strings.Index(line, "#"); idx >= 0 {
			comment = line[idx:]
		}

		old := strings.TrimSpace(strings.TrimPrefix(rest, "="))
		if idx := strings.Index(old, "#"); idx >= 0 {
			old = strings.TrimSpace(old[:idx])
		}
		result.OldValue = old

		if !force && old != "" && (placeholder == "" || !strings.Contains(old, placeholder)) {
			result.Skipped = true
			return result, nil
		}

		lines[i] = "DIPOL = " + value + "   " + comment
		break
	}

	if !found {
		lines = append(lines, "DIPOL = "+value+"   "+dipoleComment)
	}

	result.Updated = true
	if dryRun {
		return result, nil
	}
	return result, writeLines(path, lines)
}

// EnsureDipoleTags appends IDIPOL/LDIPOL tags to the INCAR when absent.
// Both are required for VASP to apply dipole corrections at all.
func EnsureDipoleTags(path string, dryRun bool) error {
	lines, err := utils.ReadFileLines(path)
	if err != nil {
		return err
	}

	hasIdipol := false
	hasLdipol := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if strings.Contains(trimmed, "IDIPOL") {
			hasIdipol = true
		}
		if strings.Contains(trimmed, "LDIPOL") {
			hasLdipol = true
		}
	}

	if hasIdipol && hasLdipol {
		return nil
	}

	if !hasIdipol {
		lines = append(lines, "IDIPOL = 3      # Calculates the dipole along the z-axis")
	}
	if !hasLdipol {
		lines = append(lines, "LDIPOL = True   # Adding dipole corrections")
	}

	if dryRun {
		return nil
	}
	return writeLines(path, lines)
}

func writeLines(path string, lines []string) error {
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644)
}
