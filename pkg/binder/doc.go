// Package binder decodes HTTP request data into tagged structs.
//
// Each binder reads one source and honours one struct tag:
//
//	Query()  query:"name"   URL query string
//	Form()   form:"name"    urlencoded or multipart form fields
//	JSON()   json:"name"    application/json body
//	Path()   path:"name"    chi route parameters
//	Body()   form or json   picks Form or JSON from Content-Type
//
// Binders return an error wrapping ErrBinderNotApplicable when the request
// does not carry their source, so handler.Wrap can chain them.
//
// Scalar conversion goes through github.com/spf13/cast, so "on", "1" and
// "true" all bind to a bool field.
package binder
