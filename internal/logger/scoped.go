package logger

import (
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Scoped is a logger carrying fixed context fields. The zero value logs
// through the process logger without extra fields.
type Scoped struct {
	name   string
	fields []any
}

// ForUpdate scopes to the chat of a Telegram update.
func ForUpdate(u *models.Update) Scoped {
	var chatID int64
	if u != nil && u.Message != nil {
		chatID = u.Message.Chat.ID
	}
	if chatID == 0 {
		return Scoped{}
	}
	return ForUser(chatID)
}

func ForUser(userID int64) Scoped {
	return Scoped{fields: []any{"user_id", userID}}
}

func ForRequest(requestID string) Scoped {
	return Scoped{fields: []any{"request_id", requestID}}
}

// Named scopes to a component.
func Named(component string) Scoped {
	return Scoped{name: component}
}

// With returns a copy with additional key/value pairs.
func (l Scoped) With(kv ...any) Scoped {
	fields := make([]any, 0, len(l.fields)+len(kv))
	fields = append(fields, l.fields...)
	fields = append(fields, kv...)
	return Scoped{name: l.name, fields: fields}
}

func (l Scoped) sugar() *zap.SugaredLogger {
	s := current()
	if l.name != "" {
		s = s.Named(l.name)
	}
	if len(l.fields) > 0 {
		s = s.With(l.fields...)
	}
	return s
}

func (l Scoped) Debugf(format string, args ...any) { l.sugar().Debugf(format, args...) }
func (l Scoped) Infof(format string, args ...any)  { l.sugar().Infof(format, args...) }
func (l Scoped) Warnf(format string, args ...any)  { l.sugar().Warnf(format, args...) }
func (l Scoped) Errorf(format string, args ...any) { l.sugar().Errorf(format, args...) }
