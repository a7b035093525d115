// Package dataset implements the Tabular Dataset Loader (spec.md §4.1),
// widened per SPEC_FULL.md §3 into a small multi-format source behind one
// Loader interface, the way the teacher's internal/io package supports
// several InputReader implementations behind one factory.
package dataset

import "catoseq/internal/model"

// Loader reads a dataset from a path (or, for PostgresLoader, ignores the
// path and runs its configured query).
type Loader interface {
	Load(path string) (model.Dataset, error)
}
