package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jmehdipour/contact-gateway/internal/metrics"
	"github.com/jmehdipour/contact-gateway/internal/rowsource"
	"github.com/jmehdipour/contact-gateway/internal/service/convert"
	"github.com/jmehdipour/contact-gateway/internal/vcard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	convertIn      string
	convertOut     string
	convertSummary string
	convertNoAI    bool
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Clean a manifest spreadsheet and write a vCard file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfigAndLogger()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		pipeline, err := newPipeline(cfg, log, metrics.New(), cfg.Cleaner.AIEnabled && !convertNoAI)
		if err != nil {
			return err
		}
		svc := convert.New(rowsource.NewExcelSource(log), pipeline, convert.WithLogger(log))

		in, err := os.Open(convertIn)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer in.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out, err := svc.Convert(ctx, filepath.Base(convertIn), in)
		if err != nil {
			return err
		}
		if out.UpstreamErr != nil {
			log.Warn("bulk AI pass failed, rule-based result used", zap.Error(out.UpstreamErr))
		}

		if err := os.WriteFile(convertOut, []byte(out.VCard), 0o644); err != nil {
			return fmt.Errorf("write vcards: %w", err)
		}

		summary, err := json.MarshalIndent(out.Summary, "", "  ")
		if err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		if convertSummary == "" {
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(summary))
			return err
		}
		if err := os.WriteFile(convertSummary, summary, 0o644); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), ">> %d contacts written to %s (run %s, path %s)\n",
			len(out.Export), convertOut, out.Run.ID, out.Run.CleanPath)
		return nil
	},
}

func init() {
	convertCmd.Flags().StringVar(&convertIn, "in", "", "manifest spreadsheet (.xlsx)")
	convertCmd.Flags().StringVar(&convertOut, "out", vcard.DefaultFileName, "vCard output file")
	convertCmd.Flags().StringVar(&convertSummary, "summary", "", "summary JSON output file (stdout when empty)")
	convertCmd.Flags().BoolVar(&convertNoAI, "no-ai", false, "skip the bulk AI pass and use the rule-based cleaner only")
	_ = convertCmd.MarkFlagRequired("in")
}
