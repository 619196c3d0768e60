// Package history defines the calculation history log shared by the engine,
// the storage backends and the presentation layer.
//
// This package contains the entry type and the store contract only, plus an
// in-memory implementation. It imports nothing internal, so both
// internal/engine and internal/store can depend on it without cycles.
//
// Contract for every Store implementation:
//   - Append creates one immutable entry and returns its id
//   - List returns live entries newest first (timestamp DESC, then insertion DESC)
//   - Delete of a missing id is a no-op
//   - DeleteAll is atomic with respect to a following List
//   - Failures of the underlying medium are wrapped in *StorageError
package history
