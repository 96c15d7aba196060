package cmd

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vaspflow/vaspflow/internal/campaign"
	"github.com/vaspflow/vaspflow/internal/config"
	"github.com/vaspflow/vaspflow/internal/utils"
	"github.com/vaspflow/vaspflow/internal/vasp"
)

var extractOutput string

var extractCmd = &cobra.Command{
	Use:   "extract <calculations_dir> [start_index] [end_index]",
	Short: "Extract final energies from completed calculations into a CSV",
	Long: `Scan each calculation's OUTCAR for the final single-point energies,
convergence status, step counts, and CPU time, and write the results to a
CSV file ordered by calculation index.

Read-only; calculations without a usable OUTCAR are reported as failed rows
but do not abort the extraction.`,
	Example: `  vaspflow extract ./calculations
  vaspflow extract ./calculations --output energies.csv
  vaspflow extract ./calculations 0 3   # Reference calculations only`,
	Args:         cobra.RangeArgs(1, 3),
	SilenceUsage: true,
	RunE:         runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output CSV path (default: energies_<timestamp>.csv)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	opts, err := parseCampaignArgs(args)
	if err != nil {
		return err
	}

	units, err := campaign.Discover(opts.Root, opts.Range)
	if err != nil {
		return err
	}

	cfg := &config.Global
	outPath := extractOutput
	if outPath == "" {
		outPath = fmt.Sprintf("energies_%s.csv", time.Now().Format("20060102_150405"))
	}

	type row struct {
		unit    *campaign.Unit
		summary *vasp.OutcarSummary
		err     error
	}

	var rows []row
	var energies []float64
	var totalCPU float64
	failed := 0

	for _, u := range units {
		summary, err := vasp.ParseOutcar(u.ArtifactPath(cfg.OutputLog))
		r := row{unit: u, summary: summary, err: err}
		rows = append(rows, r)

		switch {
		case err != nil:
			if errors.Is(err, vasp.ErrOutcarNotFound) {
				utils.PrintWarning("%s: %s not found", u.Name, cfg.OutputLog)
			} else {
				utils.PrintWarning("%s: %v", u.Name, err)
			}
			failed++
		case !summary.Ok():
			utils.PrintWarning("%s: no final energy in %s", u.Name, cfg.OutputLog)
			failed++
		default:
			energies = append(energies, *summary.EnergyWithoutEntropy)
			if summary.CPUTimeSec != nil {
				totalCPU += *summary.CPUTimeSec
			}
			convNote := ""
			if !summary.Converged {
				convNote = utils.StyleWarning(" (not converged)")
			}
			utils.PrintMessage("%s: %s eV%s", u.Name,
				utils.StyleNumber(fmt.Sprintf("%.6f", *summary.EnergyWithoutEntropy)), convNote)
		}
	}

	if err := writeEnergyCSV(outPath, func(w *csv.Writer) error {
		for _, r := range rows {
			record := []string{
				r.unit.Name,
				strconv.Itoa(r.unit.Index),
				"", "", "false", "0", "0", "", "Failed", "",
			}
			if r.err != nil {
				record[9] = r.err.Error()
			} else if s := r.summary; s != nil {
				if s.EnergyWithoutEntropy != nil {
					record[2] = strconv.FormatFloat(*s.EnergyWithoutEntropy, 'f', 8, 64)
					record[8] = "Success"
				}
				if s.EnergySigma0 != nil {
					record[3] = strconv.FormatFloat(*s.EnergySigma0, 'f', 8, 64)
				}
				record[4] = strconv.FormatBool(s.Converged)
				record[5] = strconv.Itoa(s.ElectronicSteps)
				record[6] = strconv.Itoa(s.IonicSteps)
				if s.CPUTimeSec != nil {
					record[7] = strconv.FormatFloat(*s.CPUTimeSec, 'f', 2, 64)
				}
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	utils.PrintMessage("%s", utils.StyleTitle("EXTRACTION SUMMARY"))
	utils.PrintMessage("Calculations: %s", utils.StyleNumber(len(units)))
	utils.PrintMessage("Successful:   %s", utils.StyleNumber(len(energies)))
	utils.PrintMessage("Failed:       %s", utils.StyleNumber(failed))
	if len(energies) > 0 {
		mean, min, max, std := energyStats(energies)
		utils.PrintMessage("Mean energy:  %s eV", utils.StyleNumber(fmt.Sprintf("%.6f", mean)))
		utils.PrintMessage("Min energy:   %s eV", utils.StyleNumber(fmt.Sprintf("%.6f", min)))
		utils.PrintMessage("Max energy:   %s eV", utils.StyleNumber(fmt.Sprintf("%.6f", max)))
		utils.PrintMessage("Std dev:      %s eV", utils.StyleNumber(fmt.Sprintf("%.6f", std)))
		if totalCPU > 0 {
			utils.PrintMessage("Total CPU:    %s hours", utils.StyleNumber(fmt.Sprintf("%.1f", totalCPU/3600)))
		}
	}
	utils.PrintSuccess("Results saved to %s", utils.StylePath(outPath))
	return nil
}

var energyCSVHeader = []string{
	"Calculation", "Index", "Energy_without_entropy_eV", "Energy_sigma_0_eV",
	"Converged", "Electronic_steps", "Ionic_steps", "CPU_time_sec", "Status", "Error",
}

func writeEnergyCSV(path string, writeRows func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := w.Write(energyCSVHeader); err != nil {
		f.Close()
		return err
	}
	if err := writeRows(w); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func energyStats(values []float64) (mean, min, max, std float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	for _, v := range values {
		mean += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	mean /= float64(len(values))
	for _, v := range values {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / float64(len(values)))
	return mean, min, max, std
}
