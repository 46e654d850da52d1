package sl

import (
	"io"
	"log/slog"
	"os"

	"github.com/magabrotheeeer/ereceipt/internal/config"
)

// SetupLogger возвращает текстовый логгер уровня Debug для локального запуска
// и JSON-логгер уровня Info для production.
func SetupLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	if env == config.EnvProd {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
