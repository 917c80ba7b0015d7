// Package http exposes the record service as a JSON REST API.
//
// Every route except /health (and the metrics endpoint, when enabled) requires an
// Authorization: Bearer header. The token is resolved to an owner id by an auth.Verifier
// and every service call is scoped to that owner.
//
// # Routes
//
//	GET    /health
//	POST   /files                              create in the workspace named by the body, or the personal one
//	POST   /files/notes                        create a note in the personal workspace
//	GET    /files/notes                        list personal notes
//	GET    /files/notes/{id}/content
//	PUT    /files/notes/{id}/content
//	DELETE /files/notes/{id}
//	POST   /workspace/{ws}/files               create any type
//	POST   /workspace/{ws}/notes               create a note
//	GET    /workspace/{ws}/files?type=&pageStart=&pageSize=
//	PATCH  /workspace/{ws}/files/{id}          rename
//	GET    /workspace/{ws}/files/{id}/content
//	PUT    /workspace/{ws}/files/{id}/content
//	GET    /workspace/{ws}/notes/{id}/content
//	PUT    /workspace/{ws}/notes/{id}/content
//	DELETE /workspace/{ws}/files/{id}
//	DELETE /workspace/{ws}/notes/{id}
//
// # Errors
//
// Errors are written as {"error": code, "message": text}. Unauthenticated requests get 401,
// validation failures 400, missing or foreign records 404 and store failures 500. A 500
// never carries the underlying store message.
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{
//	    Verifier: verifier,
//	    Metrics:  http.NewMetrics("quire"),
//	}, service)
//	http.ListenAndServe(":8080", handler.Router())
package http
