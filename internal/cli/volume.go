package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tautohetohe/internal/logger"
	"github.com/ppiankov/tautohetohe/internal/model"
	"github.com/ppiankov/tautohetohe/internal/pipeline"
	"github.com/ppiankov/tautohetohe/internal/storage"
)

var (
	volumeName      string
	volumeURL       string
	volumePeriod    string
	volumeRetrieved string
)

// volumeCmd represents the volume command
var volumeCmd = &cobra.Command{
	Use:   "volume <pages.csv>",
	Short: "Extract a single volume page file",
	Long: `Volume processes one page file outside the index:
- The era is chosen from the volume name
- Records go through the configured storage driver
- The volume index is neither read nor updated

Example:
  tautohetohe volume 1854-1987/451.csv
  tautohetohe volume pages.csv --name 200 --period 1923 --storage sqlite`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		vf := model.VolumeFile{
			Path: args[0],
			Volume: model.Volume{
				Name:      volumeName,
				URL:       volumeURL,
				Period:    volumePeriod,
				Retrieved: volumeRetrieved,
			},
		}
		if vf.Volume.Name == "" {
			vf.Volume.Name = strings.TrimSuffix(filepath.Base(vf.Path), filepath.Ext(vf.Path))
		}
		return runVolume(ctx, cfg, log, vf, os.Stderr)
	},
}

func init() {
	rootCmd.AddCommand(volumeCmd)

	volumeCmd.Flags().StringVar(&volumeName, "name", "", "volume name (default: file name without extension)")
	volumeCmd.Flags().StringVar(&volumeURL, "url", "", "volume URL")
	volumeCmd.Flags().StringVar(&volumePeriod, "period", "", "period used to date text before the first sitting day")
	volumeCmd.Flags().StringVar(&volumeRetrieved, "retrieved", "", "retrieval time of the volume")
}

// runVolume extracts one volume file and writes it through the sink
func runVolume(ctx context.Context, cfg *model.Config, log *logger.Logger, vf model.VolumeFile, out io.Writer) error {
	sink, err := storage.New(cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() { _ = sink.Close() }()

	p := pipeline.NewPipeline(cfg, pipeline.NewClassifier(cfg.Classifier), log)

	if cfg.Output.Verbose {
		fmt.Fprintf(out, "⚙️  Extracting %s from %s...\n", vf.Volume.Name, vf.Path)
	}

	res, err := p.ProcessFile(ctx, vf)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}
	if err := sink.WriteVolume(ctx, res); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}

	fmt.Fprintf(out, "✓ %s (era %s)\n", res.Volume.Name, res.Era)
	fmt.Fprintf(out, "  Pages:       %d\n", res.Stats.Pages)
	fmt.Fprintf(out, "  Days:        %d (%d recorded)\n", res.Stats.Days, res.Stats.DayRecords)
	fmt.Fprintf(out, "  Utterances:  %d (%d rejected)\n", res.Stats.Utterances, res.Stats.Rejected)
	fmt.Fprintf(out, "  Reo:         %.2f%%\n", res.Stats.Percent())
	fmt.Fprintf(out, "  Took:        %s\n", FormatDuration(res.Duration))
	return nil
}
