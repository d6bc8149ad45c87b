package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sticqr/internal/claims"
)

type batchView struct {
	BatchID     string `json:"batch_id"`
	Total       int    `json:"total"`
	Claimed     int    `json:"claimed"`
	GeneratedAt string `json:"generated_at"`
}

type statsView struct {
	Total     int `json:"total"`
	Claimed   int `json:"claimed"`
	Unclaimed int `json:"unclaimed"`
	Batches   int `json:"batches"`
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Inspect generated batches",
	}
	cmd.AddCommand(newBatchListCommand(ctx))
	cmd.AddCommand(newBatchShowCommand(ctx))
	cmd.AddCommand(newBatchPDFCommand(ctx))
	return cmd
}

func newBatchListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List batches with claim progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			batches, err := store.ListBatches(cmd.Context())
			if err != nil {
				return err
			}
			views := make([]batchView, 0, len(batches))
			for _, b := range batches {
				views = append(views, batchView{
					BatchID:     b.BatchID,
					Total:       b.Total,
					Claimed:     b.Claimed,
					GeneratedAt: formatTime(b.GeneratedAt),
				})
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, views)
			}
			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No batches recorded")
				return nil
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{
					v.BatchID,
					strconv.Itoa(v.Total),
					strconv.Itoa(v.Claimed),
					v.GeneratedAt,
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Batch", "Codes", "Claimed", "Generated"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newBatchShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <batch-id>",
		Short: "List the codes in a batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			batchID := strings.TrimSpace(args[0])
			records, err := store.ListByBatch(cmd.Context(), batchID)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				return fmt.Errorf("batch %s not found", batchID)
			}
			if ctx.jsonOutput() {
				views := make([]recordView, 0, len(records))
				for _, rec := range records {
					views = append(views, newRecordView(rec, nil))
				}
				return writeJSON(cmd, views)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Identifier", "Status", "Claimed", "Generated"},
				batchRows(records),
				nil,
			))
			return nil
		},
	}
}

func batchRows(records []*claims.Record) [][]string {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		state := "unclaimed"
		if rec.Claimed {
			state = "claimed"
		}
		rows = append(rows, []string{
			rec.Identifier,
			humanLabel(rec.Status),
			humanLabel(state),
			formatTime(rec.GeneratedAt),
		})
	}
	return rows
}

func newBatchPDFCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pdf <batch-id>",
		Short: "Rebuild the print PDF for a batch from its stickers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.newPipeline(cmd.Context())
			if err != nil {
				return err
			}
			res, err := p.RebuildPDF(cmd.Context(), strings.TrimSpace(args[0]))
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, newRunView(res))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "PDF: %s (%d pages)\n", res.PDFPath, res.Pages)
			return nil
		},
	}
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarise claim progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			view := statsView(stats)
			if ctx.jsonOutput() {
				return writeJSON(cmd, view)
			}
			rows := [][]string{
				{"Total", strconv.Itoa(view.Total)},
				{"Claimed", strconv.Itoa(view.Claimed)},
				{"Unclaimed", strconv.Itoa(view.Unclaimed)},
				{"Batches", strconv.Itoa(view.Batches)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Metric", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignRight},
			))
			return nil
		},
	}
}
