// Package api handles incoming HTTP requests: routing glue, request
// validation, and response formatting. It translates HTTP concerns
// into calls on the service layer and maps service errors back to
// status codes without leaking internals.
package api
