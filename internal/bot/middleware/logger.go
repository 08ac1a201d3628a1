package middleware

import (
	"strings"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Logger logs every update with the command or button that triggered it.
// Free text after a command (notes) is not logged.
func Logger(logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			start := time.Now()

			fields := []zap.Field{zap.String("type", "message")}

			if user := c.Sender(); user != nil {
				fields = append(fields,
					zap.Int64("user_id", user.ID),
					zap.String("username", user.Username),
				)
			}

			if cb := c.Callback(); cb != nil {
				fields[0] = zap.String("type", "callback")
				fields = append(fields, zap.String("button", cb.Unique))
			} else if msg := c.Message(); msg != nil {
				fields = append(fields, zap.String("command", command(msg.Text)))
			}

			err := next(c)

			fields = append(fields, zap.Duration("duration", time.Since(start)))

			if err != nil {
				fields = append(fields, zap.Error(err))
				logger.Error("handler error", fields...)
			} else {
				logger.Info("request handled", fields...)
			}

			return err
		}
	}
}

func command(text string) string {
	if !strings.HasPrefix(text, "/") {
		return text
	}
	if i := strings.IndexAny(text, " \n"); i >= 0 {
		return text[:i]
	}
	return text
}
