package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/menfes/core/bootstrap"
	coreconfig "github.com/m3rciful/menfes/core/config"
	coretelegram "github.com/m3rciful/menfes/core/telegram"
)

func TestConfigPath(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0o600))

	t.Setenv("MENFES_TEST_CONFIG", "")
	p, err := configPath(Options{ConfigEnvVar: "MENFES_TEST_CONFIG", DefaultConfigPath: filepath.Join(dir, "missing.yaml")})
	require.NoError(t, err)
	assert.Empty(t, p)

	p, err = configPath(Options{ConfigEnvVar: "MENFES_TEST_CONFIG", DefaultConfigPath: existing})
	require.NoError(t, err)
	assert.Equal(t, existing, p)

	t.Setenv("MENFES_TEST_CONFIG", "/etc/menfes.yaml")
	p, err = configPath(Options{ConfigEnvVar: "MENFES_TEST_CONFIG", DefaultConfigPath: existing})
	require.NoError(t, err)
	assert.Equal(t, "/etc/menfes.yaml", p)
}

func TestRunContextWiresHooks(t *testing.T) {
	t.Setenv("MENFES_TEST_CONFIG", "")
	var events []string

	err := RunContext(context.Background(), Options{
		ConfigEnvVar: "MENFES_TEST_CONFIG",
		LoadConfig: func(path string) (*coreconfig.Config, error) {
			assert.Empty(t, path)
			cfg := coreconfig.Defaults()
			return &cfg, nil
		},
		Bootstrap: func(context.Context, bootstrap.Options) (*bootstrap.Result, error) {
			events = append(events, "bootstrap")
			return &bootstrap.Result{}, nil
		},
		Build: func(*coreconfig.Config, *bootstrap.Result) (coretelegram.RunOptions, error) {
			return coretelegram.RunOptions{
				OnStart: func(context.Context, coretelegram.Runtime) error {
					events = append(events, "start")
					return nil
				},
				OnStop: func(context.Context, coretelegram.Runtime) error {
					events = append(events, "stop")
					return nil
				},
			}, nil
		},
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			events = append(events, "run")
			return opts.OnStop(ctx, coretelegram.Runtime{})
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bootstrap", "start", "run", "stop"}, events)
}

func TestRunContextErrors(t *testing.T) {
	t.Setenv("MENFES_TEST_CONFIG", "")
	assert.Error(t, RunContext(context.Background(), Options{}))

	err := RunContext(context.Background(), Options{
		ConfigEnvVar: "MENFES_TEST_CONFIG",
		LoadConfig:   func(string) (*coreconfig.Config, error) { return nil, errors.New("bad yaml") },
		Build: func(*coreconfig.Config, *bootstrap.Result) (coretelegram.RunOptions, error) {
			return coretelegram.RunOptions{}, nil
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
