package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"biomegen/internal/generator"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Generate a biome map interactively",
	Long: `prompt reads the seven tunable parameters from stdin, re-prompting
on out-of-range input, shows a live terminal progress bar, and writes
result.png to the working directory.`,
	RunE: runPrompt,
}

func init() {
	rootCmd.AddCommand(promptCmd)
}

type rangeSpec struct {
	label string
	min   int
	max   int
}

var promptSpecs = []rangeSpec{
	{"width", generator.MinDimension, generator.MaxDimension},
	{"height", generator.MinDimension, generator.MaxDimension},
	{"map_resolution", generator.MinMapResolution, generator.MaxMapResolution},
	{"island_abundance", generator.MinIslandAbundance, generator.MaxIslandAbundance},
	{"island_size (x10)", generator.MinIslandSizeTimes10, generator.MaxIslandSizeTimes10},
	{"coastline_smoothing", generator.MinCoastlineSmoothing, generator.MaxCoastlineSmoothing},
	{"processes", generator.MinWorkers, generator.MaxWorkers},
}

func runPrompt(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	reader := bufio.NewReader(os.Stdin)
	values := make([]int, len(promptSpecs))
	for i, spec := range promptSpecs {
		v, err := promptForInt(reader, cmd.OutOrStdout(), spec)
		if err != nil {
			return fmt.Errorf("prompt: failed to read %s: %w", spec.label, err)
		}
		values[i] = v
	}

	p := generator.Params{
		Width:              values[0],
		Height:             values[1],
		MapResolution:      values[2],
		IslandAbundance:    values[3],
		IslandSizeTimes10:  values[4],
		CoastlineSmoothing: values[5],
		Workers:            values[6],
		OutputPath:         "result.png",
	}

	tracker, join := newTrackerFor(os.Stderr)
	stats, err := generator.Run(logger, p, tracker)
	join()
	fmt.Fprintln(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "done in %.3fs, wrote %s\n", stats.Elapsed.Seconds(), p.OutputPath)
	return nil
}

func promptForInt(reader *bufio.Reader, out io.Writer, spec rangeSpec) (int, error) {
	for {
		fmt.Fprintf(out, "%s [%d-%d]: ", spec.label, spec.min, spec.max)
		line, err := reader.ReadString('\n')
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || v < spec.min || v > spec.max {
			fmt.Fprintln(out, "out of range, try again")
			continue
		}
		return v, nil
	}
}
