// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch, persist,
// or update data, abstracting SQL logic away from the service layer.
//
// Lookups that find nothing return an error wrapping pgx.ErrNoRows and
// tagged with the table name (see sqlerr.NotFound), so handlers can turn it
// into a 404 with a readable message.
package repository
