// Package api is the REST client for the logistics admin API.
//
// Every endpoint answers with an envelope:
//
//	{"success": true, "data": {...}, "message": "...", "pagination": {...}}
//
// Non-2xx responses and envelopes with success=false become *Error, whose
// UserMessage is the server's error.message or message. 401 and 403 unwrap
// to ErrUnauthorized and ErrForbidden and trigger the unauthorized handler.
//
// Reads (GET) are retried on transient failures; writes are attempted once.
// All calls pass the resilience executor and are traced and measured.
package api
