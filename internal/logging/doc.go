// Package logging provides slog helpers for consistent structured logging.
//
// It defines the attribute keys used across the codebase (operation, rule,
// label, query, ...) so that log output stays greppable, and a few
// convenience constructors for common attributes. Full email addresses are
// never logged; use Domain or AnonymizeSender for low-cardinality
// correlation instead.
package logging
