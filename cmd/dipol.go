package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaspflow/vaspflow/internal/campaign"
	"github.com/vaspflow/vaspflow/internal/config"
	"github.com/vaspflow/vaspflow/internal/utils"
	"github.com/vaspflow/vaspflow/internal/vasp"
)

var (
	dipolDryRun  bool
	dipolUseGeom bool
	dipolForce   bool
)

var dipolCmd = &cobra.Command{
	Use:   "dipol <calculations_dir> [start_index] [end_index]",
	Short: "Update DIPOL tags from the structure's center of mass",
	Long: `Calculate the mass-weighted fractional center of each POSCAR and write it
into the DIPOL tag of the matching INCAR, resolving placeholder values left
by the setup step. Also ensures the IDIPOL/LDIPOL tags are present.

Existing non-placeholder DIPOL values are kept unless --force is given.`,
	Example: `  vaspflow dipol ./calculations
  vaspflow dipol ./calculations --dry-run
  vaspflow dipol ./calculations --use-geom    # Geometric instead of mass-weighted center
  vaspflow dipol ./calculations --force       # Overwrite existing DIPOL values`,
	Args:         cobra.RangeArgs(1, 3),
	SilenceUsage: true,
	RunE:         runDipol,
}

func init() {
	rootCmd.AddCommand(dipolCmd)
	dipolCmd.Flags().BoolVar(&dipolDryRun, "dry-run", false, "Show what would be changed without making changes")
	dipolCmd.Flags().BoolVar(&dipolUseGeom, "use-geom", false, "Use geometric center instead of mass-weighted center")
	dipolCmd.Flags().BoolVar(&dipolForce, "force", false, "Overwrite existing DIPOL values")
}

func runDipol(cmd *cobra.Command, args []string) error {
	opts, err := parseCampaignArgs(args)
	if err != nil {
		return err
	}

	units, err := campaign.Discover(opts.Root, opts.Range)
	if err != nil {
		return err
	}

	cfg := &config.Global
	var summary campaign.Summary

	for _, u := range units {
		poscarPath := u.ArtifactPath(cfg.StructureFile)
		incarPath := u.ArtifactPath(cfg.ParameterFile)

		if !utils.FileExists(poscarPath) {
			utils.PrintWarning("%s: %s not found, skipping", u.Name, cfg.StructureFile)
			summary.Skipped++
			continue
		}
		if !utils.FileExists(incarPath) {
			utils.PrintWarning("%s: %s not found, skipping", u.Name, cfg.ParameterFile)
			summary.Skipped++
			continue
		}

		poscar, err := vasp.ParsePoscar(poscarPath)
		if err != nil {
			utils.PrintError("%s: %v", u.Name, err)
			summary.Failed++
			continue
		}
		center, err := poscar.Center(!dipolUseGeom)
		if err != nil {
			utils.PrintError("%s: %v", u.Name, err)
			summary.Failed++
			continue
		}
		value := vasp.FormatDipole(center)
		utils.PrintDebug("%s: calculated DIPOL %s", u.Name, value)

		update, err := vasp.UpdateDipole(incarPath, value, cfg.PlaceholderToken, dipolForce, dipolDryRun)
		if err != nil {
			utils.PrintError("%s: failed to update DIPOL: %v", u.Name, err)
			summary.Failed++
			continue
		}
		if update.Skipped {
			utils.PrintMessage("%s: DIPOL already set to %s, keeping (use --force to overwrite)",
				u.Name, utils.StyleNumber(update.OldValue))
			summary.Skipped++
			continue
		}

		if err := vasp.EnsureDipoleTags(incarPath, dipolDryRun); err != nil {
			utils.PrintError("%s: failed to ensure IDIPOL/LDIPOL tags: %v", u.Name, err)
			summary.Failed++
			continue
		}

		if dipolDryRun {
			utils.PrintMessage("%s: would set DIPOL = %s", u.Name, utils.StyleNumber(value))
		} else {
			utils.PrintSuccess("%s: DIPOL = %s", u.Name, utils.StyleNumber(value))
		}
		summary.Successful++
	}

	printSummary("DIPOL UPDATE SUMMARY", summary)
	if summary.Failed > 0 {
		return fmt.Errorf("%d DIPOL update(s) failed", summary.Failed)
	}
	return nil
}
