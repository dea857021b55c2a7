// Package errors provides the classified error type used across sitemapper.
//
// A ClassifiedError carries a category (config, validation, content, filesystem, ...),
// a severity, a message, an optional cause and free-form context. Errors are built
// with a fluent builder:
//
//	err := errors.ConfigError("invalid exclusion pattern").
//		WithContext("pattern", p).
//		WithCause(compileErr).
//		Build()
//
// The CLI adapter maps categories to process exit codes.
package errors
