package logger

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RestyLogger routes resty's internal messages through zerolog. It satisfies
// resty.Logger.
type RestyLogger struct {
	logger *zerolog.Logger
}

// Resty returns a resty logger bound to the global zerolog logger.
func Resty() *RestyLogger {
	l := log.With().Str("component", "resty").Logger()
	return &RestyLogger{logger: &l}
}

func (r *RestyLogger) Errorf(format string, v ...any) {
	r.logger.Error().Msg(trim(format, v...))
}

func (r *RestyLogger) Warnf(format string, v ...any) {
	r.logger.Warn().Msg(trim(format, v...))
}

func (r *RestyLogger) Debugf(format string, v ...any) {
	r.logger.Debug().Msg(trim(format, v...))
}

func trim(format string, v ...any) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
