package logging

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strings"
)

// Common log attribute keys for consistent naming across the codebase.
const (
	KeyOperation = "operation"
	KeyRule      = "rule"
	KeyLabel     = "label"
	KeyQuery     = "query"
	KeyBatch     = "batch"
	KeyCount     = "count"
	KeyStatus    = "status"
	KeyError     = "error"
	KeySender    = "sender"
)

// Status values for consistent logging.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusSkipped = "skipped"
)

// WithOperation returns a logger with the operation attribute set.
func WithOperation(logger *slog.Logger, operation string) *slog.Logger {
	return logger.With(slog.String(KeyOperation, operation))
}

// WithRule returns a logger with the rule label attribute set.
func WithRule(logger *slog.Logger, rule string) *slog.Logger {
	return logger.With(slog.String(KeyRule, rule))
}

// Operation returns a slog attribute for the operation name.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// Rule returns a slog attribute for the rule label.
func Rule(label string) slog.Attr {
	return slog.String(KeyRule, label)
}

// Label returns a slog attribute for a Gmail label name.
func Label(name string) slog.Attr {
	return slog.String(KeyLabel, name)
}

// Query returns a slog attribute for a Gmail search query.
func Query(q string) slog.Attr {
	return slog.String(KeyQuery, q)
}

// Batch returns a slog attribute for a batch index.
func Batch(n int) slog.Attr {
	return slog.Int(KeyBatch, n)
}

// Count returns a slog attribute for a result count.
func Count(n int) slog.Attr {
	return slog.Int(KeyCount, n)
}

// Status returns a slog attribute for the status.
func Status(status string) slog.Attr {
	return slog.String(KeyStatus, status)
}

// Err returns a slog attribute for an error.
// If err is nil, returns an empty Group attribute that will be omitted from
// output. This allows safely passing Err(maybeNilErr) without adding empty
// attributes.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Group("")
	}
	return slog.String(KeyError, err.Error())
}

// AnonymizeSender returns a hashed representation of a sender address for
// logging purposes. This allows correlation of log entries without exposing
// PII.
func AnonymizeSender(sender string) string {
	if sender == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(strings.ToLower(sender)))
	return "sender:" + hex.EncodeToString(hash[:8])
}

// Sender returns a slog attribute with the anonymized sender address.
func Sender(sender string) slog.Attr {
	return slog.String(KeySender, AnonymizeSender(sender))
}

// ExtractDomain extracts the domain part from an email address.
// This is useful for lower-cardinality logging where the full address would
// create too many unique values.
func ExtractDomain(email string) string {
	if email == "" {
		return ""
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

// Domain returns a slog attribute for the sender domain (lower cardinality
// than the full address).
func Domain(email string) slog.Attr {
	return slog.String("sender_domain", ExtractDomain(email))
}
