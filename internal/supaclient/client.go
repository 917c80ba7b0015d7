// Package supaclient builds the Supabase client shared by the metadata, storage and auth backends.
package supaclient

import (
	"errors"
	"fmt"
	"sync"

	storage "github.com/supabase-community/storage-go"
	"github.com/supabase-community/supabase-go"
)

const storagePath = "/storage/v1"

// Config identifies a Supabase project.
type Config struct {
	URL    string `mapstructure:"url"`
	Key    string `mapstructure:"key"`
	Schema string `mapstructure:"schema"`
}

// Validate reports missing connection details.
func (c Config) Validate() error {
	if c.URL == "" {
		return errors.New("supabase url is required")
	}
	if c.Key == "" {
		return errors.New("supabase key is required")
	}
	return nil
}

// Lazy builds the client on first use and hands the same instance to every caller.
type Lazy struct {
	cfg    Config
	once   sync.Once
	client *supabase.Client
	err    error
}

func NewLazy(cfg Config) *Lazy {
	return &Lazy{cfg: cfg}
}

// Client returns the shared client, or the error the first construction failed with.
func (l *Lazy) Client() (*supabase.Client, error) {
	l.once.Do(func() {
		if err := l.cfg.Validate(); err != nil {
			l.err = err
			return
		}
		l.client, l.err = supabase.NewClient(l.cfg.URL, l.cfg.Key, &supabase.ClientOptions{Schema: l.cfg.Schema})
		if l.err != nil {
			l.err = fmt.Errorf("supabase client: %w", l.err)
		}
	})
	return l.client, l.err
}

// NewStorage returns a fresh Storage client. Uploads set content type and upsert headers on
// the client itself, so concurrent or successive uploads must not share one.
func (l *Lazy) NewStorage() (*storage.Client, error) {
	if err := l.cfg.Validate(); err != nil {
		return nil, err
	}
	return storage.NewClient(l.cfg.URL+storagePath, l.cfg.Key, map[string]string{"apikey": l.cfg.Key}), nil
}
