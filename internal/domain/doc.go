// Package domain holds the validated value types of the newsletter: who a
// subscriber is, what state their subscription is in, and the token that
// confirms it. Constructors reject invalid input so anything of these types
// can be written to the database without further checks.
package domain
