/*
storage.go - Persistence contract for the engine

PURPOSE:
  Defines the interface between the domain logic and the database: a durable
  keyed-collection store with getAll / put (upsert by id) / delete per entity
  type, plus the foreign-key and secondary-attribute lookups the engine needs.

ATOMICITY CONTRACT:
  WithTx must make "put vacation + put updated employee" commit together or
  not at all. The SQLite implementation uses a real database transaction; the
  in-memory implementation uses snapshot/rollback.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production SQLite
  - vacation/store/memory.go: in-memory for tests
*/
package vacation

import "context"

// Store is the durable keyed-collection contract. Put is an upsert by id;
// reads return copies the caller may mutate freely.
type Store interface {
	// Employees
	Employees(ctx context.Context) ([]Employee, error)
	Employee(ctx context.Context, id EmployeeID) (*Employee, error)
	PutEmployee(ctx context.Context, e Employee) error
	DeleteEmployee(ctx context.Context, id EmployeeID) error

	// Vacations
	Vacations(ctx context.Context) ([]Vacation, error)
	Vacation(ctx context.Context, id VacationID) (*Vacation, error)
	VacationsByEmployee(ctx context.Context, id EmployeeID) ([]Vacation, error)
	VacationsByYear(ctx context.Context, year int) ([]Vacation, error)
	PutVacation(ctx context.Context, v Vacation) error
	DeleteVacation(ctx context.Context, id VacationID) error

	// Restrictions
	Restrictions(ctx context.Context) ([]Restriction, error)
	RestrictionsByEmployee(ctx context.Context, id EmployeeID) ([]Restriction, error)
	PutRestriction(ctx context.Context, r Restriction) error
	DeleteRestriction(ctx context.Context, id RestrictionID) error

	// Holidays
	Holidays(ctx context.Context) ([]Holiday, error)
	PutHoliday(ctx context.Context, h Holiday) error
	DeleteHoliday(ctx context.Context, id HolidayID) error
}

// TxStore extends Store with a transactional scope spanning collections.
type TxStore interface {
	Store

	// WithTx executes fn against a transactional view of the store.
	// If fn returns an error the transaction is rolled back; otherwise it is
	// committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
