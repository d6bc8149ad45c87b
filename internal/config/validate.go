package config

import (
	"errors"
	"fmt"
	"strings"

	"sticqr/internal/qrstyle"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateSticker(); err != nil {
		return err
	}
	if err := c.validatePDF(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if _, err := c.ResolveStyle(); err != nil {
		return err
	}
	return nil
}

// ResolveStyle merges the [style] overrides over the compositor defaults.
func (c *Config) ResolveStyle() (qrstyle.Style, error) {
	return qrstyle.NewStyle(qrstyle.Overrides(c.Style))
}

func (c *Config) validateGeneration() error {
	if c.Generation.Count <= 0 {
		return errors.New("generation.count must be positive")
	}
	if c.Generation.Size < minimumQRSize {
		return fmt.Errorf("generation.size must be at least %d pixels", minimumQRSize)
	}
	if c.Generation.Workers <= 0 {
		return errors.New("generation.workers must be positive")
	}
	return nil
}

func (c *Config) validateSticker() error {
	if c.Sticker.ScaleFactor < 0 {
		return errors.New("sticker.scale_factor must be >= 0 (0 disables scaling)")
	}
	if c.Sticker.DPI <= 0 {
		return errors.New("sticker.dpi must be positive")
	}
	return nil
}

func (c *Config) validatePDF() error {
	switch strings.ToUpper(c.PDF.PageSize) {
	case "A4", "A5", "A3", "LETTER", "LEGAL":
	default:
		return fmt.Errorf("pdf.page_size %q is not supported", c.PDF.PageSize)
	}
	if c.PDF.Margin < 0 {
		return errors.New("pdf.margin must be >= 0")
	}
	if c.PDF.Width <= 0 {
		return errors.New("pdf.width must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not supported", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 || c.Logging.RetentionDays < 0 {
		return errors.New("logging rotation values must be >= 0")
	}
	return nil
}
