package initializer

import (
	"log/slog"
	"os"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/config"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var levelStyles = map[log.Level]struct {
	label string
	color lipgloss.AdaptiveColor
}{
	log.DebugLevel: {"DEBU", lipgloss.AdaptiveColor{Light: "#7E57C2", Dark: "#B39DDB"}},
	log.InfoLevel:  {"INFO", lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD700"}},
	log.WarnLevel:  {"WARN", lipgloss.AdaptiveColor{Light: "#D9730D", Dark: "#FFA657"}},
	log.ErrorLevel: {"ERRO", lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF6B6B"}},
}

// SetupLogger installs a charmbracelet/log handler as the default slog
// logger and returns it.
func SetupLogger(cfg *config.Log) *slog.Logger {
	if cfg == nil {
		cfg = &config.Log{Format: "text", TimeFormat: "2006-01-02 15:04:05"}
	}
	styles := log.DefaultStyles()
	for level, s := range levelStyles {
		styles.Levels[level] = lipgloss.NewStyle().
			SetString(s.label).
			Bold(true).
			Padding(0, 1).
			Foreground(s.color)
	}
	gold := lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD700"}
	for _, key := range []string{"op", "userID", "amount", "grams"} {
		styles.Keys[key] = lipgloss.NewStyle().Foreground(gold)
	}
	styles.Keys["error"] = lipgloss.NewStyle().Foreground(levelStyles[log.ErrorLevel].color)
	styles.Values["error"] = lipgloss.NewStyle().Bold(true)

	formatter := log.TextFormatter
	switch cfg.Format {
	case "json":
		formatter = log.JSONFormatter
	case "logfmt":
		formatter = log.LogfmtFormatter
	}

	logger := log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      cfg.TimeFormat,
		Level:           log.Level(cfg.Level),
		Prefix:          cfg.Prefix,
		Formatter:       formatter,
	})
	logger.SetStyles(styles)

	slogger := slog.New(logger)
	slog.SetDefault(slogger)
	return slogger
}
