// Package pdfdoc assembles sticker images into a printable document with one
// image per page.
package pdfdoc

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-pdf/fpdf"

	"sticqr/internal/fileutil"
	"sticqr/internal/textutil"
)

// Layout places each image at (Margin, Margin) scaled to Width, in
// millimetres on a portrait page of PageSize.
type Layout struct {
	PageSize string
	Margin   float64
	Width    float64
}

// DefaultLayout matches the stock sticker sheet.
func DefaultLayout() Layout {
	return Layout{PageSize: "A4", Margin: 10, Width: 190}
}

// FileName is the base name of the document for batchID.
func FileName(batchID string) string {
	return "stickers_" + textutil.SanitizeSegment(batchID) + ".pdf"
}

// Assemble writes images, in the order given, to path and returns the page
// count.
func Assemble(images []string, path string, layout Layout) (int, error) {
	if len(images) == 0 {
		return 0, errors.New("assemble pdf: no images")
	}
	if layout.Width <= 0 {
		return 0, fmt.Errorf("assemble pdf: invalid width %v", layout.Width)
	}
	pageSize := strings.TrimSpace(layout.PageSize)
	if pageSize == "" {
		pageSize = "A4"
	}

	doc := fpdf.New("P", "mm", pageSize, "")
	doc.SetCreator("sticqr", true)
	for _, img := range images {
		if _, err := os.Stat(img); err != nil {
			return 0, fmt.Errorf("assemble pdf: %w", err)
		}
		doc.AddPage()
		doc.ImageOptions(img, layout.Margin, layout.Margin, layout.Width, 0, false,
			fpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}, 0, "")
		if err := doc.Error(); err != nil {
			return 0, fmt.Errorf("assemble pdf: add %s: %w", img, err)
		}
	}

	pages := doc.PageCount()
	err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return doc.Output(w)
	})
	if err != nil {
		return 0, fmt.Errorf("write pdf: %w", err)
	}
	return pages, nil
}
