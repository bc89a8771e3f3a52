package repo

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm/logger"
)

// slowQuery is the threshold above which statements are logged as slow.
const slowQuery = 500 * time.Millisecond

// zerologWriter adapts a zerolog.Logger to logger.Writer.
type zerologWriter struct {
	l zerolog.Logger
}

func (w zerologWriter) Printf(format string, args ...any) {
	w.l.Warn().Msgf(strings.TrimSpace(format), args...)
}

// NewGormLogger returns a GORM logger that writes through l. Statements are
// logged without bound values so customer data never reaches the log, and
// a lookup that finds nothing is not treated as an error.
func NewGormLogger(l zerolog.Logger) logger.Interface {
	return logger.New(
		zerologWriter{l: l.With().Str("component", "gorm").Logger()},
		logger.Config{
			SlowThreshold:             slowQuery,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  false,
		},
	)
}
