package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldTier is the structured log field key for the extraction tier name.
	FieldTier = "tier"
	// FieldMatchKind is the structured log field key for the grounding match kind.
	FieldMatchKind = "match_kind"
	// FieldEmailID is the structured log field key for the processed email identifier.
	FieldEmailID = "email_id"
	// FieldModel is the structured log field key for the model identifier backing a tier.
	FieldModel = "model"
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

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// TierFields returns standard zap fields identifying an extraction tier and
// the model backing it. Empty values are ignored to keep log entries compact
// when information is missing.
func TierFields(tier, model string) []zap.Field {
	return StringFields(
		StringField{Key: FieldTier, Value: tier},
		StringField{Key: FieldModel, Value: model},
	)
}

// WithTierFields attaches the tier fields to the provided logger.
// If the logger is nil, a no-op logger is created to avoid panics.
func WithTierFields(logger *zap.Logger, tier, model string) *zap.Logger {
	fields := TierFields(tier, model)
	return WithFields(logger, fields...)
}
