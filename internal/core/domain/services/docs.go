// Package services provides domain services that derive state across the items of an
// order rather than belonging to a single entity.
//
// The package includes:
//   - CompletionAggregator: derives an order's status from the statuses of its items
//
// Services here are pure. They never read storage; callers load a consistent snapshot
// and persist the result with a guarded write.
package services
