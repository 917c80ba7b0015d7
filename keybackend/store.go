package keybackend

// TokensConfig holds configuration for loading static tokens.
type TokensConfig struct {
	Inline []TokenOwner `mapstructure:"inline"`
	File   string       `mapstructure:"file"`
}

// NewTokenStore merges inline and file tokens into one store.
// File entries win when a token appears in both.
func NewTokenStore(cfg TokensConfig) (*MapTokenStore, error) {
	tokens := toMap(cfg.Inline)

	if cfg.File != "" {
		fileTokens, err := LoadTokensFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for k, v := range fileTokens {
			tokens[k] = v
		}
	}

	return NewMapTokenStore(tokens), nil
}
