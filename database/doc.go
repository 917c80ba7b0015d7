// Package database connects quire to one of its metadata backends.
//
// # Supported Backends
//
//   - PostgreSQL: pgx connection pool, schema managed by Migrate
//   - SQLite: modernc.org/sqlite, for development and single-node deployments
//   - Supabase: PostgREST over HTTP; the table is owned by the project's migrations,
//     so Migrate is a no-op and Validate only probes the columns
//
// # Usage
//
//	db, err := database.Connect(ctx, database.Config{
//	    Type:   "sqlite",
//	    DSN:    "quire.db",
//	    Tables: quire.Tables{Records: "workspace_files"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Validate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	repo := db.GetRepo()
package database
