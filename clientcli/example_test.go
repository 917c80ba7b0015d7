package clientcli_test

import (
	"fmt"
	"os"

	"github.com/sagarc03/quire/clientcli"
)

func ExampleMergeConfig() {
	fromProfile := &clientcli.Config{Endpoint: "https://quire.example.com", Token: "profile-token"}
	fromFlags := &clientcli.Config{Token: "flag-token"}

	cfg := clientcli.MergeConfig(fromProfile, clientcli.ConfigFromProfile(nil), fromFlags)
	fmt.Println(cfg.Endpoint, cfg.Token)
	// Output: https://quire.example.com flag-token
}

func ExampleHumanFormatter_FormatDelete() {
	formatter := clientcli.NewFormatter(false, false)
	_ = formatter.FormatDelete(os.Stdout, []clientcli.DeleteResult{
		{ID: "5f0c2a1e-8d3b-4c7a-9e6f-1b2c3d4e5f60", Deleted: true},
	})
	// Output: Deleted: 5f0c2a1e-8d3b-4c7a-9e6f-1b2c3d4e5f60
}
