// Package sqlerr translates PostgreSQL driver errors into API errors.
//
// Repositories return raw pgx errors; the global error handler calls
// HandleError so a duplicate subscriber email becomes a 400 with a readable
// message instead of a 500 carrying SQLSTATE 23505.
package sqlerr
