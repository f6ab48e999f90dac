// Package apperr defines the coded error taxonomy shared by every zkl
// component. Lower layers return sentinels from this package (optionally
// carrying a cause via With); the send orchestrator uses Retryable to decide
// between another attempt and a terminal failure.
package apperr
