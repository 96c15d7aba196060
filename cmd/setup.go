package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vaspflow/vaspflow/internal/config"
	"github.com/vaspflow/vaspflow/internal/reference"
	"github.com/vaspflow/vaspflow/internal/utils"
)

var (
	setupTemplatesDir string
	setupMappingFile  string
	setupDryRun       bool
)

var setupCmd = &cobra.Command{
	Use:   "setup <reference_dir>",
	Short: "Create reference calculation directories from templates",
	Long: `Create the reference calculation directories (calc_0000 .. calc_0003) used
to compute interface adhesion energies. Each directory gets its slab POSCAR
from <reference_dir>/poscars plus INCAR, KPOINTS, POTCAR and job script
copies from the templates directory.

The default index-to-POSCAR mapping is:

  calc_0000 -> E1 film slab             (POSCAR_film_slab)
  calc_0001 -> E2 substrate slab        (POSCAR_sub_slab)
  calc_0002 -> E3 film double slab      (POSCAR_film_double_slab)
  calc_0003 -> E4 substrate double slab (POSCAR_sub_double_slab)

and can be overridden with a YAML mapping file (--mapping).`,
	Example: `  vaspflow setup ./reference
  vaspflow setup ./reference --templates-dir ./templates
  vaspflow setup ./reference --mapping ./reference.yaml --dry-run`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
	setupCmd.Flags().StringVar(&setupTemplatesDir, "templates-dir", "", "Templates directory (default: <reference_dir>/../templates)")
	setupCmd.Flags().StringVar(&setupMappingFile, "mapping", "", "YAML file overriding the index-to-POSCAR mapping")
	setupCmd.Flags().BoolVar(&setupDryRun, "dry-run", false, "Preview without creating directories")
}

func runSetup(cmd *cobra.Command, args []string) error {
	refDir, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	templatesDir := setupTemplatesDir
	if templatesDir == "" {
		templatesDir = filepath.Join(filepath.Dir(refDir), "templates")
	}

	entries := reference.DefaultEntries()
	if setupMappingFile != "" {
		entries, err = reference.LoadMapping(setupMappingFile)
		if err != nil {
			return err
		}
		utils.PrintMessage("Using mapping from %s (%s entries)",
			utils.StylePath(setupMappingFile), utils.StyleNumber(len(entries)))
	}

	if setupDryRun {
		utils.PrintNote("Dry-run mode: no directories will be created")
	}

	successful, failed, err := reference.Setup(refDir, templatesDir, entries, &config.Global, setupDryRun)
	if err != nil {
		return err
	}

	utils.PrintMessage("%s", utils.StyleTitle("SETUP SUMMARY"))
	utils.PrintMessage("Successful: %s", utils.StyleNumber(successful))
	utils.PrintMessage("Failed:     %s", utils.StyleNumber(failed))

	if !setupDryRun && successful > 0 {
		calcsDir := filepath.Join(refDir, "calculations")
		utils.PrintHint("Next: vaspflow dipol %s", calcsDir)
		utils.PrintHint("Then: vaspflow submit %s", calcsDir)
	}

	if failed > 0 {
		return fmt.Errorf("%d reference setup(s) failed", failed)
	}
	return nil
}
