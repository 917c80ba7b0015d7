package keybackend

import (
	"encoding/json"
	"fmt"
	"os"
)

// TokenOwner binds a static bearer token to the owner id it authenticates as.
type TokenOwner struct {
	Token string `json:"token" mapstructure:"token"`
	Owner string `json:"owner" mapstructure:"owner"`
}

// LoadTokensFromFile loads static tokens from a JSON file:
//
//	[
//	  {"token": "qt_3f9c...", "owner": "a1b2c3d4-..."},
//	  {"token": "qt_81aa...", "owner": "service-importer"}
//	]
//
// Entries missing either field are skipped.
func LoadTokensFromFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read tokens file: %w", err)
	}

	var entries []TokenOwner
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse tokens file: %w", err)
	}

	return toMap(entries), nil
}

func toMap(entries []TokenOwner) map[string]string {
	tokens := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.Token != "" && e.Owner != "" {
			tokens[e.Token] = e.Owner
		}
	}
	return tokens
}
