package server

import (
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/lixenwraith/sightgrid/parameter"
)

// Config holds listener and scene settings loaded from the environment
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	ScenePath string
	Watch     bool
}

// DefaultConfig returns the parameter defaults
func DefaultConfig() Config {
	return Config{
		Addr:            parameter.ServerAddress,
		ReadTimeout:     parameter.ServerReadTimeout,
		WriteTimeout:    parameter.ServerWriteTimeout,
		ShutdownTimeout: parameter.ServerShutdownTimeout,
		CORSOrigins:     []string{"*"},
	}
}

// LoadConfig reads SIGHTGRID_* variables, first merging a .env file when one exists
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("server: .env: %v", err)
	}

	def := DefaultConfig()
	return Config{
		Addr:            getEnv("SIGHTGRID_ADDR", def.Addr),
		ReadTimeout:     parseDuration(os.Getenv("SIGHTGRID_READ_TIMEOUT"), def.ReadTimeout),
		WriteTimeout:    parseDuration(os.Getenv("SIGHTGRID_WRITE_TIMEOUT"), def.WriteTimeout),
		ShutdownTimeout: def.ShutdownTimeout,
		CORSOrigins:     splitList(getEnv("SIGHTGRID_CORS_ORIGINS", "*")),
		ScenePath:       os.Getenv("SIGHTGRID_SCENE"),
		Watch:           getEnv("SIGHTGRID_WATCH", "false") == "true",
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
