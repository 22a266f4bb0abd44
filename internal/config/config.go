package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           int    `envconfig:"PORT" default:"8080"`
	DatabaseURL    string `envconfig:"DATABASE_URL" default:""`
	JWTSecret      string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`

	// Editing
	Fuzziness         float64 `envconfig:"FUZZINESS" default:"4"`
	GridSize          float64 `envconfig:"GRID_SIZE" default:"10"`
	SnapToGrid        bool    `envconfig:"SNAP_TO_GRID" default:"false"`
	FillMaxIterations int     `envconfig:"FILL_MAX_ITERATIONS" default:"100"`
	SheetWidth        int     `envconfig:"SHEET_WIDTH" default:"800"`
	SheetHeight       int     `envconfig:"SHEET_HEIGHT" default:"600"`

	AutosaveInterval time.Duration `envconfig:"AUTOSAVE_INTERVAL" default:"30s"`
	SessionTTL       time.Duration `envconfig:"SESSION_TTL" default:"24h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into its entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
