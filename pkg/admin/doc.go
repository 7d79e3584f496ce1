// Package admin serves the JSON API over stored request logs.
//
// Routes, relative to where the router is mounted:
//
//	GET  /logs             list with search, orderby, order, page, per_page
//	GET  /logs/{id}        one record
//	POST /logs/bulk        delete, delete_all, export, export_all
//	GET  /exports/{name}   download a CSV export
//
// Every route sits behind HTTP basic auth checked against a bcrypt hash.
// List responses carry paging in the envelope meta:
//
//	{"data": [...], "meta": {"total": 42, "page": 1, "per_page": 10, "pages": 5}}
//
// Bulk replies carry a human-readable message, and exports also carry the
// download URL.
package admin
