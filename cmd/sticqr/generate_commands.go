package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sticqr/internal/pipeline"
)

type itemView struct {
	Identifier  string `json:"identifier"`
	QRPath      string `json:"qr_path"`
	StickerPath string `json:"sticker_path"`
}

type runView struct {
	BatchID  string     `json:"batch_id"`
	Items    []itemView `json:"items"`
	PDFPath  string     `json:"pdf_path,omitempty"`
	Pages    int        `json:"pages"`
	Failures string     `json:"failures,omitempty"`
}

func newRunView(res *pipeline.Result) runView {
	view := runView{
		BatchID: res.BatchID,
		PDFPath: res.PDFPath,
		Pages:   res.Pages,
		Items:   make([]itemView, 0, len(res.Items)),
	}
	for _, item := range res.Items {
		view.Items = append(view.Items, itemView(item))
	}
	if res.Failures != nil {
		view.Failures = res.Failures.Error()
	}
	return view
}

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var (
		count      int
		size       int
		batchID    string
		bestEffort bool
		noPDF      bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of QR codes, stickers and a print PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.newPipeline(cmd.Context())
			if err != nil {
				return err
			}
			res, err := p.Run(cmd.Context(), pipeline.Options{
				BatchID:    batchID,
				Count:      count,
				Size:       size,
				BestEffort: bestEffort,
				SkipPDF:    noPDF,
			})
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, newRunView(res))
			}
			return printRun(cmd, res)
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 0, "Number of codes to generate (defaults to generation.count)")
	cmd.Flags().IntVar(&size, "size", 0, "QR edge length in pixels (defaults to generation.size)")
	cmd.Flags().StringVar(&batchID, "batch-id", "", "Batch identifier (generated when empty)")
	cmd.Flags().BoolVar(&bestEffort, "best-effort", false, "Keep going when individual codes fail")
	cmd.Flags().BoolVar(&noPDF, "no-pdf", false, "Skip assembling the print PDF")
	return cmd
}

func newSingleCommand(ctx *commandContext) *cobra.Command {
	var identifier string

	cmd := &cobra.Command{
		Use:   "single",
		Short: "Generate one QR code and sticker without a PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := ctx.newPipeline(cmd.Context())
			if err != nil {
				return err
			}
			item, err := p.Single(cmd.Context(), strings.TrimSpace(identifier))
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				return writeJSON(cmd, itemView(*item))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Identifier: %s\n", item.Identifier)
			fmt.Fprintf(out, "QR code:    %s\n", item.QRPath)
			fmt.Fprintf(out, "Sticker:    %s\n", item.StickerPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&identifier, "identifier", "i", "", "Identifier to encode (a UUID is generated when empty)")
	return cmd
}

func printRun(cmd *cobra.Command, res *pipeline.Result) error {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(res.Items))
	for i, item := range res.Items {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			item.Identifier,
			filepath.Base(item.StickerPath),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Identifier", "Sticker"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "Batch:    %s\n", res.BatchID)
	fmt.Fprintf(out, "Stickers: %d\n", len(res.Items))
	if res.PDFPath != "" {
		fmt.Fprintf(out, "PDF:      %s (%d pages)\n", res.PDFPath, res.Pages)
	}
	if res.Failures != nil {
		fmt.Fprintln(out, colorizeOutcome("Some codes failed: "+res.Failures.Error(), false, shouldColorize(out)))
	}
	return nil
}
