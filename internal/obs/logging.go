// Package obs contains observability utilities such as logging.
package obs

import (
	"log/slog"
	"os"
)

// Logger is the global structured logger used by the service. It defaults
// to a JSON handler at info level; InitLogger replaces it during startup.
var Logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// InitLogger initializes the global Logger with JSON handler at info level.
func InitLogger() {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	Logger = slog.New(h)
}
