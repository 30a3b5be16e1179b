package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/tautohetohe/internal/index"
	"github.com/ppiankov/tautohetohe/internal/logger"
	"github.com/ppiankov/tautohetohe/internal/model"
	"github.com/ppiankov/tautohetohe/internal/pipeline"
	"github.com/ppiankov/tautohetohe/internal/storage"
	"github.com/ppiankov/tautohetohe/internal/worker"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Extract every unprocessed volume listed in the index",
	Long: `Run processes all eligible volumes:
- Read the volume index and pick volumes not yet processed
- Skip volumes whose page file is missing from the input directory
- Extract day summaries and reo Māori utterances in parallel
- Write records through the configured storage driver
- Mark each successful volume processed in the index

Example:
  tautohetohe run
  tautohetohe run --workers 4 --input-dir ./1854-1987
  tautohetohe run --storage sqlite --sqlite-path hansard.db`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary, err := runBatch(ctx, cfg, log, os.Stderr)
		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d of %d volumes failed", summary.Failed, summary.Total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("workers", 1, "number of volumes processed concurrently")
	runCmd.Flags().String("input-dir", "", "directory holding <volume>.csv page files")
	runCmd.Flags().String("output-dir", "", "directory for per-volume output files")
	runCmd.Flags().String("index", "", "volume index CSV")

	_ = viper.BindPFlag("concurrency.workers", runCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("paths.input_dir", runCmd.Flags().Lookup("input-dir"))
	_ = viper.BindPFlag("paths.output_dir", runCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("paths.index_file", runCmd.Flags().Lookup("index"))
}

// BatchSummary counts the outcomes of a run
type BatchSummary struct {
	Total      int
	Succeeded  int
	Failed     int
	Utterances int
	DayRecords int
	Elapsed    time.Duration
}

// runBatch extracts every eligible volume and reports progress to out
func runBatch(ctx context.Context, cfg *model.Config, log *logger.Logger, out io.Writer) (*BatchSummary, error) {
	start := time.Now()
	ix := index.New(cfg.Paths.IndexFile)

	files, err := ix.Eligible(cfg.Paths.InputDir)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(out, "  Tautohetohe Extraction\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "  Index:        %s\n", cfg.Paths.IndexFile)
	fmt.Fprintf(out, "  Input dir:    %s\n", cfg.Paths.InputDir)
	fmt.Fprintf(out, "  Volumes:      %d eligible\n", len(files))
	fmt.Fprintf(out, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(out, "  Storage:      %s\n", cfg.Storage.Driver)
	fmt.Fprintf(out, "\n")

	sink, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	defer func() { _ = sink.Close() }()

	p := pipeline.NewPipeline(cfg, pipeline.NewClassifier(cfg.Classifier), log)
	processor := worker.NewBatchProcessor(p, sink, ix, cfg.Concurrency.Workers, log)

	summary := &BatchSummary{Total: len(files)}
	for _, outcome := range processor.ProcessVolumes(ctx, files) {
		if outcome.Error != nil {
			summary.Failed++
			fmt.Fprintf(out, "✗ %s: %v\n", outcome.Volume.Name, outcome.Error)
			continue
		}

		summary.Succeeded++
		res := outcome.Result
		summary.Utterances += len(res.Utterances)
		summary.DayRecords += len(res.Days)
		fmt.Fprintf(out, "✓ %s (era %s, %d days, %d utterances, %.2f%% reo) in %s\n",
			res.Volume.Name, res.Era, len(res.Days), len(res.Utterances),
			res.Stats.Percent(), FormatDuration(outcome.Duration))
	}
	summary.Elapsed = time.Since(start)

	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(out, "  Extraction Complete\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(out, "\n")
	fmt.Fprintf(out, "  Total:       %d volumes\n", summary.Total)
	fmt.Fprintf(out, "  Success:     %d\n", summary.Succeeded)
	fmt.Fprintf(out, "  Failures:    %d\n", summary.Failed)
	fmt.Fprintf(out, "  Days:        %d\n", summary.DayRecords)
	fmt.Fprintf(out, "  Utterances:  %d\n", summary.Utterances)
	fmt.Fprintf(out, "  Took:        %s\n", FormatDuration(summary.Elapsed))
	fmt.Fprintf(out, "\n")

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("run interrupted: %w", err)
	}
	return summary, nil
}
