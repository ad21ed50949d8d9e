// Package errs provides the error types shared by the kitchen service.
//
// Each type follows one pattern: a sentinel (ErrObjectNotFound, ErrValueIsInvalid, ...),
// a struct carrying the details, New.../New...WithCause constructors, and Unwrap returning
// the sentinel so callers branch with errors.Is.
//
// Expected business outcomes (claim conflicts, completion by a non-owner) are NOT errors;
// they are typed results of the command handlers. Errors here are for absent objects,
// invalid input, retryable store failures (TransientStoreError) and lapsed sessions.
package errs
