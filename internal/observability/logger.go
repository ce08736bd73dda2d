package observability

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// LoggerOptions shapes the console logger built by NewLogger.
type LoggerOptions struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
}

// NewLogger builds a console logger tagged with app.
func NewLogger(app string, out io.Writer, opts LoggerOptions) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    opts.NoColor,
	}
	if !opts.Timestamp {
		output.PartsExclude = []string{zerolog.TimestampFieldName}
	}
	ctx := zerolog.New(output).Level(opts.Level).With()
	if opts.Timestamp {
		ctx = ctx.Timestamp()
	}
	if app != "" {
		ctx = ctx.Str("app", app)
	}
	return ctx.Logger()
}
