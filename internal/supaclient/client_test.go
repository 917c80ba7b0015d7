package supaclient_test

import (
	"testing"

	"github.com/sagarc03/quire/internal/supaclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLazy_Client(t *testing.T) {
	t.Parallel()

	l := supaclient.NewLazy(supaclient.Config{URL: "http://localhost:54321", Key: "anon"})

	first, err := l.Client()
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := l.Client()
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestLazy_Client_MissingConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  supaclient.Config
		want string
	}{
		{"no url", supaclient.Config{Key: "anon"}, "url is required"},
		{"no key", supaclient.Config{URL: "http://localhost"}, "key is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := supaclient.NewLazy(tt.cfg).Client()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLazy_NewStorage(t *testing.T) {
	t.Parallel()

	l := supaclient.NewLazy(supaclient.Config{URL: "http://localhost:54321", Key: "anon"})

	a, err := l.NewStorage()
	require.NoError(t, err)
	b, err := l.NewStorage()
	require.NoError(t, err)
	assert.NotSame(t, a, b)

	_, err = supaclient.NewLazy(supaclient.Config{}).NewStorage()
	assert.Error(t, err)
}
