// Package api handles incoming HTTP requests, request validation, and
// response formatting. It acts as an adapter between external clients
// and the internal application services, translating HTTP concerns to
// business operations. Authorization decisions live in the service
// layer; handlers only carry the authenticated actor through.
package api
