// Package clientcli is a client library for the quire REST API.
//
// It covers listing, creating, renaming and deleting records and moving their
// content to and from local files, authenticating with a bearer token. Profiles
// in a YAML config file hold the endpoint and token for each server.
//
// # Basic Usage
//
//	client, err := clientcli.New(&clientcli.Config{
//		Endpoint: "http://localhost:5708",
//		Token:    os.Getenv("QUIRE_TOKEN"),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rec, err := client.Create(ctx, clientcli.CreateOptions{Name: "Untitled", Type: "note"})
//	_, err = client.Put(ctx, clientcli.PutOptions{
//		ContentOptions: clientcli.ContentOptions{ID: rec.ID, Note: true},
//		LocalPath:      "./note.json",
//	})
//
// Requests without a Workspace go to the caller's personal routes, which only
// serve notes. Every other record type needs a Workspace.
//
// # Profiles
//
//	configFile, err := clientcli.LoadConfigFile(clientcli.DefaultConfigPath())
//	profile, err := configFile.GetProfile("production")
//	client, err := clientcli.New(clientcli.ConfigFromProfile(profile))
package clientcli
