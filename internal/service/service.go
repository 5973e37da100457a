// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data.
//
// Services depend on small interfaces rather than concrete repositories so
// they can be exercised without a database. Request-scoped logging comes
// from zerolog.Ctx, populated by the context enhancer middleware.
package service
