// Package services contains the record services: per-collection CRUD and
// query operations composed from the SQLite repositories, with multi-step
// writes wrapped in transactions.
package services
