package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldSession is the structured log field key for the swipe session id.
	FieldSession = "session_id"
	// FieldContent is the structured log field key for the swiped content type.
	FieldContent = "content_type"
	// FieldProvider is the structured log field key for the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel is the structured log field key for the AI model identifier.
	FieldModel = "ai_model"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to the logger, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// SessionFields describes a swipe session.
func SessionFields(sessionID, contentType string) []zap.Field {
	return StringFields(
		StringField{Key: FieldSession, Value: sessionID},
		StringField{Key: FieldContent, Value: contentType},
	)
}

// AIFields describes the AI provider and model. Empty values are ignored.
func AIFields(provider, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldProvider, Value: provider},
		StringField{Key: FieldModel, Value: model},
	)
}
