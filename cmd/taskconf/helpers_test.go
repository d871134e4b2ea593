// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/invowk/taskconf/internal/config"
)

type (
	// stubConfig is a ConfigProvider returning fixed settings.
	stubConfig struct {
		cfg *config.Config
		err error
	}

	// syncBuffer is a bytes.Buffer safe for concurrent writers.
	syncBuffer struct {
		mu  sync.Mutex
		buf bytes.Buffer
	}
)

func (s stubConfig) Load(_ context.Context, _ config.LoadOptions) (*config.Config, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.cfg == nil {
		return config.DefaultConfig(), nil
	}
	return s.cfg, nil
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// runCLI executes the command tree with args against in-memory streams.
func runCLI(t *testing.T, provider ConfigProvider, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut syncBuffer
	app := NewApp(Dependencies{
		Config: provider,
		Stdout: &out,
		Stderr: &errOut,
		Env:    func(string) string { return "" },
	})
	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// settingsWith returns the default settings modified by fn.
func settingsWith(fn func(*config.Config)) *config.Config {
	cfg := config.DefaultConfig()
	fn(cfg)
	return cfg
}
