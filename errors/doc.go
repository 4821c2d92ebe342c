// Package errors provides structured error types for gireflect.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the qualified path of the object involved, a detail
// message, an optional numeric code reported by the metadata library, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoad, errors.KindLoadFailure).
//		Detail("Typelib file for namespace '%s' (any version) not found", "Foo").
//		Code(0).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.LookupNotFound("GLib.Variant", "frobnicate")
//	err := errors.OutOfRange(errors.PhaseLookup, path, 10, 5)
//
// All errors implement the standard error interface and support errors.Is/As.
// Property dispatch misses are not errors and never produce one.
package errors
