package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaspflow/vaspflow/internal/campaign"
	"github.com/vaspflow/vaspflow/internal/config"
	"github.com/vaspflow/vaspflow/internal/utils"
	"github.com/vaspflow/vaspflow/internal/vasp"
)

var sortPoscarDryRun bool

var sortPoscarCmd = &cobra.Command{
	Use:   "sort-poscar <calculations_dir> [start_index] [end_index]",
	Short: "Group POSCAR atoms by element",
	Long: `Rewrite each calculation's POSCAR so atoms of the same element form one
contiguous block: Nb Sn Nb Sn ... becomes Nb Nb ... Sn Sn ...

Interface builders often emit interleaved structures, but VASP pairs POTCAR
entries with POSCAR species blocks positionally, so the blocks must be
grouped. Already-grouped files are left untouched.`,
	Example: `  vaspflow sort-poscar ./calculations
  vaspflow sort-poscar ./reference/calculations 0 3
  vaspflow sort-poscar ./calculations --dry-run`,
	Args:         cobra.RangeArgs(1, 3),
	SilenceUsage: true,
	RunE:         runSortPoscar,
}

func init() {
	rootCmd.AddCommand(sortPoscarCmd)
	sortPoscarCmd.Flags().BoolVar(&sortPoscarDryRun, "dry-run", false, "Report what would change without rewriting files")
}

func runSortPoscar(cmd *cobra.Command, args []string) error {
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
		if !utils.FileExists(poscarPath) {
			utils.PrintWarning("%s: %s not found, skipping", u.Name, cfg.StructureFile)
			summary.Skipped++
			continue
		}

		poscar, err := vasp.ParsePoscar(poscarPath)
		if err != nil {
			utils.PrintError("%s: %v", u.Name, err)
			summary.Failed++
			continue
		}

		if poscar.GroupedByElement() {
			utils.PrintMessage("%s: already grouped (%s)", u.Name, poscar.Composition())
			summary.Skipped++
			continue
		}

		poscar.SortByElement()

		if sortPoscarDryRun {
			utils.PrintMessage("%s: would regroup to %s", u.Name, utils.StyleNumber(poscar.Composition()))
			summary.Successful++
			continue
		}
		if err := poscar.Write(poscarPath); err != nil {
			utils.PrintError("%s: failed to rewrite %s: %v", u.Name, cfg.StructureFile, err)
			summary.Failed++
			continue
		}
		utils.PrintSuccess("%s: %s", u.Name, utils.StyleNumber(poscar.Composition()))
		summary.Successful++
	}

	printSummary("POSCAR SORT SUMMARY", summary)
	if summary.Failed > 0 {
		return fmt.Errorf("%d POSCAR rewrite(s) failed", summary.Failed)
	}
	return nil
}
