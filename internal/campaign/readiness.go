package campaign

import (
	"strings"

	"github.com/vaspflow/vaspflow/internal/config"
	"github.com/vaspflow/vaspflow/internal/utils"
)

// CheckReadiness verifies that a unit has every required input artifact and,
// when checkDipole is set, that its DIPOL tag has been resolved to a real
// value. Returns StateSubmittable when the unit may proceed to reconciliation,
// otherwise StateMissingInputs or StateDipoleNotReady with a diagnostic detail.
// Read-only: never mutates the unit's directory.
func CheckReadiness(u *Unit, cfg *config.Config, checkDipole bool) (State, string) {
	// Check order is fixed so the first missing artifact is the one reported.
	for _, name := range cfg.RequiredInputs() {
		if !utils.FileExists(u.ArtifactPath(name)) {
			return StateMissingInputs, name + " not found"
		}
	}

	if checkDipole {
		if ok, reason := dipoleReady(u.ArtifactPath(cfg.ParameterFile), cfg.PlaceholderToken); !ok {
			return StateDipoleNotReady, reason
		}
	}

	return StateSubmittable, ""
}

// dipoleReady scans the parameter file for an uncommented DIPOL tag.
// A line holding both the tag and the placeholder token is never ready, even
// when digits also appear on it. IDIPOL/LDIPOL lines are not DIPOL.
func dipoleReady(incarPath string, placeholder string) (bool, string) {
	lines, err := utils.ReadFileLines(incarPath)
	if err != nil {
		return false, "cannot read parameter file"
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			continue
		}
		if !strings.HasPrefix(trimmed, "DIPOL") {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "DIPOL"))
		if !strings.HasPrefix(rest, "=") {
			continue
		}

		// Placeholder detection takes precedence over numeric detection,
		// and considers the whole line including any trailing comment.
		if placeholder != "" && strings.Contains(trimmed, placeholder) {
			return false, "DIPOL is an unresolved placeholder"
		}

		value := strings.TrimSpace(strings.TrimPrefix(rest, "="))
		if i := strings.Index(value, "#"); i >= 0 {
			value = strings.TrimSpace(value[:i])
		}
		if !strings.ContainsAny(value, "0123456789") {
			return false, "DIPOL has no numeric value"
		}
		return true, ""
	}

	return false, "DIPOL tag not set in parameter file"
}
