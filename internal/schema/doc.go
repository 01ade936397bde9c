// Package schema declares the tables of the hit data store.
//
// A Registry holds table definitions: typed columns, foreign-key references
// to a parent table's id, and an optional multi-column UNIQUE constraint.
// Every table gets an implicit "id INTEGER PRIMARY KEY AUTOINCREMENT" column
// so ids are monotonically assigned and never reused.
//
// The registry is pure data. BuildCreateStatement derives the CREATE TABLE
// statement for a table; the same table always yields the same statement.
package schema
