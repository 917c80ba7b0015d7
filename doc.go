// Package quire manages user-owned documents whose metadata lives in a relational store
// and whose content lives in a separate blob store.
//
// A record ("file", with "note" as a distinguished type) is a row owned by exactly one
// principal inside a workspace. Its content is a single blob addressed by a path derived
// from the workspace, the record id and the record type. The two stores are not
// transactional with each other; Service keeps them coherent under partial failure.
//
// # Key Components
//
//   - Service: create, list, rename, read-content, write-content, delete and sweep
//   - RecordRepo: metadata gateway (PostgreSQL, SQLite, Supabase PostgREST)
//   - BlobStorage: content gateway (filesystem, Supabase Storage)
//   - CanonicalPath / ReadPaths / ContentRef: type-aware blob addressing with a legacy fallback
//   - Page / PageMeta: offset pagination with clamped page sizes
//
// # Blob Layout
//
//	workspace/<workspace>/notes/<id>   notes (canonical)
//	workspace/<workspace>/files/<id>   every other type, and the legacy location for notes
//
// # Example Usage
//
//	service, err := quire.NewService(repo, storage, quire.ServiceConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	scope := quire.Scope{WorkspaceID: ws, OwnerID: owner}
//	rec, err := service.Create(ctx, quire.CreateRecord{Scope: scope, Name: "Untitled", Type: quire.TypeNote})
//
//	_, err = service.WriteContent(ctx, scope, rec.ID, quire.TypeNote, body, "application/json")
//	content, err := service.ReadContent(ctx, scope, rec.ID, quire.TypeNote)
//
// See the http package for the REST API and the database packages for metadata backends.
package quire
