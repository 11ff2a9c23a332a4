package bootstrap

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/menfes/core/config"
	"github.com/m3rciful/menfes/core/paramstore"
	"github.com/m3rciful/menfes/core/telegram/state"
)

type staticGetter map[string]string

func (g staticGetter) GetParameter(_ context.Context, name string) (string, error) {
	v, ok := g[name]
	if !ok {
		return "", errors.New("parameter not found")
	}
	return v, nil
}

func testConfig() *coreconfig.Config {
	cfg := coreconfig.Defaults()
	cfg.Telegram.Token = "123:abc"
	return &cfg
}

func noLogger(*coreconfig.Config) error { return nil }

func TestRunDefaultsToMemory(t *testing.T) {
	res, err := Run(context.Background(), Options{Config: testConfig(), LoggerInit: noLogger})
	require.NoError(t, err)
	assert.IsType(t, &state.MemoryBackend{}, res.Backend)
	assert.NoError(t, res.Close())
}

func TestRunResolvesTokenFromParameterStore(t *testing.T) {
	cfg := testConfig()
	cfg.Telegram.Token = ""
	cfg.Telegram.TokenParam = "/menfes/bot-token"

	_, err := Run(context.Background(), Options{
		Config:     cfg,
		LoggerInit: noLogger,
		Secrets: func(context.Context) (paramstore.Getter, error) {
			return staticGetter{"/menfes/bot-token": " 999:xyz "}, nil
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "999:xyz", cfg.Telegram.Token)
}

func TestRunFailsWhenTokenParameterMissing(t *testing.T) {
	cfg := testConfig()
	cfg.Telegram.Token = ""
	cfg.Telegram.TokenParam = "/menfes/absent"

	_, err := Run(context.Background(), Options{
		Config:     cfg,
		LoggerInit: noLogger,
		Secrets: func(context.Context) (paramstore.Getter, error) {
			return staticGetter{}, nil
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token lookup failed")
}

func TestRunPropagatesBackendErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Backend = coreconfig.BackendPostgres

	_, err := Run(context.Background(), Options{
		Config:     cfg,
		LoggerInit: noLogger,
		Connect: func(context.Context, coreconfig.DatabaseConfig) (*sqlx.DB, error) {
			return nil, errors.New("connection refused")
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database initialization failed")
}

func TestRunPropagatesLoggerError(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Config:     testConfig(),
		LoggerInit: func(*coreconfig.Config) error { return errors.New("bad dir") },
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger init failed")

	_, err = Run(context.Background(), Options{})
	assert.Error(t, err)
}

func TestResultCloseRunsInReverse(t *testing.T) {
	var order []int
	res := &Result{closers: []func() error{
		func() error { order = append(order, 1); return nil },
		func() error { order = append(order, 2); return errors.New("first failure") },
	}}
	err := res.Close()
	assert.EqualError(t, err, "first failure")
	assert.Equal(t, []int{2, 1}, order)
	assert.NoError(t, res.Close())
}
