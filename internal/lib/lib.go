// Packages lib acts as a library for modules that do not fit
// strictly into other layers.
//
// It contains password hashing, background job processing
// (using Redis/Asynq), the outbound email client (HTTP API or Resend),
// and shared utilities.
package lib
