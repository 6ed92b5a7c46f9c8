package bootstrap

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/toolbox/pkg/config"
)

type execCall struct {
	argv0 string
	argv  []string
	env   []string
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.Root = t.TempDir() + "/root"
	return cfg
}

func fakeEnv(vars map[string]string) Option {
	return WithEnv(
		func(k string) string { return vars[k] },
		func() []string { return []string{"PATH=/usr/bin"} },
	)
}

func TestEnsure_AlreadyActive(t *testing.T) {
	cfg := testConfig(t)
	called := false

	err := Ensure(cfg, []string{"toolbox", "build"},
		fakeEnv(map[string]string{EnvActive: "1"}),
		WithExec(func(string, []string, []string) error {
			called = true
			return nil
		}),
	)

	require.NoError(t, err)
	assert.False(t, called)
	assert.NoDirExists(t, cfg.Root)
}

func TestEnsure_ReExecs(t *testing.T) {
	cfg := testConfig(t)
	var got *execCall

	err := Ensure(cfg, []string{"toolbox", "create", "ping"},
		fakeEnv(nil),
		WithExecutable(func() (string, error) { return "/opt/toolbox", nil }),
		WithExec(func(argv0 string, argv, env []string) error {
			got = &execCall{argv0: argv0, argv: argv, env: env}
			return nil
		}),
	)

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "/opt/toolbox", got.argv0)
	assert.Equal(t, []string{"/opt/toolbox", "create", "ping"}, got.argv)
	assert.Contains(t, got.env, "PATH=/usr/bin")
	assert.Contains(t, got.env, EnvActive+"=1")
	assert.Contains(t, got.env, config.EnvRoot+"="+cfg.Root)

	for _, dir := range []string{cfg.ToolsDir(), cfg.BuildDir(), cfg.BinDir(), cfg.LogDir()} {
		assert.DirExists(t, dir)
	}
	assert.FileExists(t, cfg.ConfigPath())
}

func TestEnsure_ExecFailure(t *testing.T) {
	cfg := testConfig(t)

	err := Ensure(cfg, []string{"toolbox"},
		fakeEnv(nil),
		WithExecutable(func() (string, error) { return "/opt/toolbox", nil }),
		WithExec(func(string, []string, []string) error { return errors.New("exec format error") }),
	)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "exec format error")
}

func TestPrepare_KeepsExistingConfig(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.Root, 0755))
	require.NoError(t, os.WriteFile(cfg.ConfigPath(), []byte("prune_stale: false\n"), 0644))

	require.NoError(t, Prepare(cfg))
	require.NoError(t, Prepare(cfg))

	data, err := os.ReadFile(cfg.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, "prune_stale: false\n", string(data))
}

func TestPrepare_DefaultConfigLoads(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, Prepare(cfg))

	loaded, err := config.Load(cfg.ConfigPath())
	require.NoError(t, err)
	assert.Equal(t, config.Default(), loaded)
}
