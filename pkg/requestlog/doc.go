// Package requestlog turns inbound HTTP traffic into stored request records.
//
// Every request is classified once into an Origin. DIRECT requests are page
// loads served by this process and are captured by Middleware after the
// wrapped handler has written its response. BEACON requests are posted by a
// script on pages that were served from a cache, so the server never saw the
// original page load. Anything else is IGNORE and leaves no trace.
//
// Service.HandleInbound runs the pipeline for one request:
//
//	classify -> filters -> extract -> dedup -> sink insert
//
// It never returns an error. The caller gets an Ack describing the outcome;
// failures of the dedup store or the sink are logged and counted but never
// change the response served to the client.
//
// Storage is behind the Sink interface. Implementations live in the logstore
// package.
package requestlog
