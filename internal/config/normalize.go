package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGeneration()
	c.normalizePDF()
	c.normalizeLogging()
	if c.Style == nil {
		c.Style = map[string]any{}
	}
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}

	if value, ok := os.LookupEnv(databaseEnvironmentKey); ok && strings.TrimSpace(value) != "" {
		c.Paths.Database = value
	}
	c.Paths.Database = strings.TrimSpace(c.Paths.Database)
	if c.Paths.Database == "" {
		c.Paths.Database = defaultDatabase
	}
	if DatabaseIsFile(c.Paths.Database) {
		if c.Paths.Database, err = expandPath(c.Paths.Database); err != nil {
			return fmt.Errorf("paths.database: %w", err)
		}
	}

	if c.Paths.Template, err = expandPath(strings.TrimSpace(c.Paths.Template)); err != nil {
		return fmt.Errorf("paths.template: %w", err)
	}
	if c.Paths.Icon, err = expandPath(strings.TrimSpace(c.Paths.Icon)); err != nil {
		return fmt.Errorf("paths.icon: %w", err)
	}
	return nil
}

func (c *Config) normalizeGeneration() {
	if c.Generation.Workers <= 0 {
		c.Generation.Workers = runtime.NumCPU()
	}
	if c.Generation.Workers > maximumGenerationWorkers {
		c.Generation.Workers = maximumGenerationWorkers
	}
}

func (c *Config) normalizePDF() {
	c.PDF.PageSize = strings.TrimSpace(c.PDF.PageSize)
	if c.PDF.PageSize == "" {
		c.PDF.PageSize = defaultPDFPageSize
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
