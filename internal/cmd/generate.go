package cmd

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"biomegen/internal/generator"
	"biomegen/internal/progress"
)

var generateCmd = &cobra.Command{
	Use:   "generate width height map_resolution island_abundance island_size_times_10 coastline_smoothing processes output_path",
	Short: "Generate a biome map in automated mode",
	Long: `generate runs the pipeline from eight positional parameters and
prints a single line to stdout on completion: the total elapsed time in
seconds as a bare float. No progress bar is shown in this mode.`,
	Args: cobra.ExactArgs(8),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().Bool("organic-edges", false, "Perturb pixel colors with low-amplitude Perlin jitter")
	generateCmd.Flags().Bool("preview", false, "Also write a downsized <output>.preview.png")
	generateCmd.Flags().Int64("seed", 0, "Deterministic seed for worker RNGs (0 selects OS entropy)")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"generate.organic_edges", "organic-edges"},
		{"generate.preview", "preview"},
		{"generate.seed", "seed"},
	}
	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, generateCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	params, err := parsePositionalParams(args)
	if err != nil {
		return err
	}

	organicEdges := viper.GetBool("generate.organic_edges")
	preview := viper.GetBool("generate.preview")
	seedVal := viper.GetInt64("generate.seed")

	p := generator.Params{
		Width:               params.width,
		Height:              params.height,
		MapResolution:       params.mapResolution,
		IslandAbundance:     params.islandAbundance,
		IslandSizeTimes10:   params.islandSizeTimes10,
		CoastlineSmoothing:  params.coastlineSmoothing,
		Workers:             params.processes,
		OutputPath:          params.outputPath,
		OrganicEdges:        organicEdges,
		Preview:             preview,
		PreviewMaxDimension: 256,
	}
	if seedVal != 0 {
		p.DeterministicSeed = &seedVal
	}

	// Auto mode never starts the terminal progress tracker (§4.7). There is
	// no cancellation path (§5): a fatal error in any stage aborts the
	// whole process, so no signal handling is wired up here.
	stats, err := generator.Run(logger, p, nil)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%f\n", stats.Elapsed.Seconds())
	return nil
}

type positionalParams struct {
	width              int
	height             int
	mapResolution      int
	islandAbundance    int
	islandSizeTimes10  int
	coastlineSmoothing int
	processes          int
	outputPath         string
}

func parsePositionalParams(args []string) (positionalParams, error) {
	var p positionalParams
	ints := make([]int, 6)
	names := []string{"width", "height", "map_resolution", "island_abundance", "island_size_times_10", "coastline_smoothing"}
	for i := 0; i < 6; i++ {
		v, err := strconv.Atoi(args[i])
		if err != nil {
			return p, fmt.Errorf("invalid %s %q: %w", names[i], args[i], err)
		}
		ints[i] = v
	}
	processes, err := strconv.Atoi(args[6])
	if err != nil {
		return p, fmt.Errorf("invalid processes %q: %w", args[6], err)
	}

	p.width, p.height = ints[0], ints[1]
	p.mapResolution, p.islandAbundance = ints[2], ints[3]
	p.islandSizeTimes10, p.coastlineSmoothing = ints[4], ints[5]
	p.processes = processes
	p.outputPath = args[7]
	return p, nil
}

// newTrackerFor builds a running progress tracker for interactive mode and
// starts its redraw loop on a background goroutine; the caller joins it via
// the returned stop function after the pipeline finishes.
func newTrackerFor(out io.Writer) (*progress.Tracker, func()) {
	t := progress.New()
	done := make(chan struct{})
	go func() {
		t.Run(out)
		close(done)
	}()
	return t, func() { <-done }
}
