// Package kernel holds the value objects shared by every aggregate of the kitchen domain.
// Today that is the UUID identifier; values are immutable and safe for concurrent use.
package kernel
