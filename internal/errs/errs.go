// Package errs defines the error shapes the API returns to clients.
//
// Every failure that leaves a handler is funneled through the global error
// handler in the middleware package and rendered as an HTTPError, so browser
// forms, curl users and the newsletter publisher all see the same JSON body:
//
//	{"code":"BAD_REQUEST","message":"Validation failed","status":400,
//	 "override":true,"errors":[{"field":"email","error":"is required"}]}
package errs
