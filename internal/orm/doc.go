// Package orm provides the data-access core: a driver-agnostic connection
// contract, a bounded blocking connection pool with scoped acquisition
// guards, transaction and unit-of-work boundaries with guaranteed best-effort
// rollback, and a small query-builder/repository layer on top.
//
// Dialect differences live entirely inside Connection implementations; every
// type in this package depends only on the abstract capability set declared
// in drivers.go.
package orm
