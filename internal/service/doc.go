// Package service contains the application-specific use cases and business
// logic. It orchestrates interactions between domain objects and repositories
// (defined in internal/store) to fulfill application features.
//
// Each service receives its dependencies through constructor injection and
// exposes an interface the API layer consumes. Mutating operations resolve
// the acting user's permissions via internal/domain/access before touching
// the store, run inside a transaction when more than one write is involved,
// and translate store errors into service-level errors the API layer maps
// to HTTP status codes.
package service
