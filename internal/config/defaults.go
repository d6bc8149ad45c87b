package config

const (
	defaultOutputDir         = "~/.local/share/sticqr/output"
	defaultLogDir            = "~/.local/share/sticqr/logs"
	defaultDatabase          = "~/.local/share/sticqr/sticqr.db"
	defaultGenerationCount   = 10
	defaultGenerationSize    = 700
	defaultStickerPositionX  = 720
	defaultStickerPositionY  = 1200
	defaultStickerScale      = 0.6
	defaultStickerDPI        = 300
	defaultPDFPageSize       = "A4"
	defaultPDFMargin         = 10
	defaultPDFWidth          = 190
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultLogMaxSizeMB      = 10
	defaultLogMaxBackups     = 5
	defaultLogRetentionDays  = 60
	databaseEnvironmentKey   = "STICQR_DATABASE"
	minimumQRSize            = 21
	maximumGenerationWorkers = 256
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			Database:  defaultDatabase,
		},
		Generation: Generation{
			Count: defaultGenerationCount,
			Size:  defaultGenerationSize,
		},
		Sticker: Sticker{
			PositionX:   defaultStickerPositionX,
			PositionY:   defaultStickerPositionY,
			ScaleFactor: defaultStickerScale,
			DPI:         defaultStickerDPI,
		},
		PDF: PDF{
			PageSize: defaultPDFPageSize,
			Margin:   defaultPDFMargin,
			Width:    defaultPDFWidth,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			MaxSizeMB:     defaultLogMaxSizeMB,
			MaxBackups:    defaultLogMaxBackups,
			RetentionDays: defaultLogRetentionDays,
		},
		Style: map[string]any{},
	}
}
