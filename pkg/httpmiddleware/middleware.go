// Package httpmiddleware holds the HTTP middleware chain of the storefront
// API server.
package httpmiddleware

import (
	"net/http"

	"github.com/go-faster/jx"
)

// Middleware wraps an http.Handler. It is an alias so values can be passed
// straight to chi's Router.Use.
type Middleware = func(http.Handler) http.Handler

// WriteError writes a {"code": status, "message": msg} JSON body.
func WriteError(w http.ResponseWriter, status int, msg string) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("code")
	e.Int(status)
	e.FieldStart("message")
	e.Str(msg)
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
