package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lunchroulette/lunchd/internal/repositories"
	"github.com/lunchroulette/lunchd/internal/services"
	"github.com/lunchroulette/lunchd/internal/session"
	"github.com/lunchroulette/lunchd/internal/shared"
	tu "github.com/lunchroulette/lunchd/internal/testing"
	"github.com/urfave/cli/v3"
)

func testConfig(t *testing.T) *shared.Config {
	t.Helper()

	dir := t.TempDir()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(dir, "lunchd.db")
	config.Document.Path = filepath.Join(dir, "users.json")
	config.Session.Path = filepath.Join(dir, "session.json")
	config.Client.Backend = "document"
	return config
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			sessions := session.NewMemoryStore()

			runner := NewRunner(RunnerOpts{
				Config:   config,
				Logger:   logger,
				Output:   output,
				Sessions: sessions,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.sessions != sessions {
				t.Error("expected sessions to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

func TestRunnerReloadConfig(t *testing.T) {
	runWithConfigFlag := func(t *testing.T, runner *Runner, configPath string) *shared.Config {
		t.Helper()

		var loaded *shared.Config
		cmd := &cli.Command{
			Name:  "test",
			Flags: []cli.Flag{&cli.StringFlag{Name: "config"}},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				loaded = runner.reloadConfig(cmd)
				return nil
			},
		}

		args := []string{"test"}
		if configPath != "" {
			args = append(args, "--config", configPath)
		}
		if err := cmd.Run(context.Background(), args); err != nil {
			t.Fatalf("command run failed: %v", err)
		}
		return loaded
	}

	t.Run("without flag returns current config", func(t *testing.T) {
		config := shared.DefaultConfig()
		runner := NewRunner(RunnerOpts{Config: config})

		if got := runWithConfigFlag(t, runner, ""); got != config {
			t.Error("expected the runner's config back")
		}
	})

	t.Run("loads config from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := shared.CreateConfigFile(path); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		runner := NewRunner(RunnerOpts{})
		got := runWithConfigFlag(t, runner, path)

		if got == nil || got == runner.config {
			t.Error("expected a freshly loaded config")
		}
	})

	t.Run("missing file falls back to current config", func(t *testing.T) {
		config := shared.DefaultConfig()
		runner := NewRunner(RunnerOpts{Config: config})

		if got := runWithConfigFlag(t, runner, "/nonexistent/config.toml"); got != config {
			t.Error("expected fallback to the runner's config")
		}
	})
}

func TestRunnerOpenStore(t *testing.T) {
	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(nil)})

	t.Run("document backend", func(t *testing.T) {
		config := testConfig(t)

		store, cleanup, err := runner.openStore(config, "document")
		if err != nil {
			t.Fatalf("openStore failed: %v", err)
		}
		defer cleanup()

		if _, ok := store.(*repositories.DocumentRepository); !ok {
			t.Errorf("expected a DocumentRepository, got %T", store)
		}
	})

	t.Run("sqlite backend runs migrations", func(t *testing.T) {
		config := testConfig(t)

		store, cleanup, err := runner.openStore(config, "sqlite")
		if err != nil {
			t.Fatalf("openStore failed: %v", err)
		}
		defer cleanup()

		collection, err := store.ReadAll(context.Background())
		if err != nil {
			t.Fatalf("ReadAll on fresh database failed: %v", err)
		}
		if collection.Version != 0 {
			t.Errorf("expected version 0, got %d", collection.Version)
		}
	})

	t.Run("unknown backend", func(t *testing.T) {
		if _, _, err := runner.openStore(testConfig(t), "redis"); err == nil {
			t.Error("expected an error for unknown backend")
		}
	})
}

func TestRunnerNewCollectionAPI(t *testing.T) {
	runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(nil)})

	t.Run("http backend builds a client", func(t *testing.T) {
		config := testConfig(t)
		config.Client.Backend = "http"

		api, cleanup, err := runner.newCollectionAPI(config)
		if err != nil {
			t.Fatalf("newCollectionAPI failed: %v", err)
		}
		defer cleanup()

		if _, ok := api.(*services.CollectionClient); !ok {
			t.Errorf("expected a CollectionClient, got %T", api)
		}
	})

	t.Run("document backend operates locally", func(t *testing.T) {
		config := testConfig(t)

		api, cleanup, err := runner.newCollectionAPI(config)
		if err != nil {
			t.Fatalf("newCollectionAPI failed: %v", err)
		}
		defer cleanup()

		if _, ok := api.(*services.LocalCollection); !ok {
			t.Errorf("expected a LocalCollection, got %T", api)
		}
	})
}

func TestRunnerNewManager(t *testing.T) {
	config := testConfig(t)
	runner := NewRunner(RunnerOpts{
		Config:   config,
		Logger:   shared.NewLogger(nil),
		Sessions: session.NewMemoryStore(),
	})

	manager, cleanup, err := runner.newManager(config)
	if err != nil {
		t.Fatalf("newManager failed: %v", err)
	}
	defer cleanup()

	ctx := context.Background()
	if err := manager.Signup(ctx, "alice", "pw1"); err != nil {
		t.Fatalf("Signup through the runner's manager failed: %v", err)
	}

	identity, ok := manager.Current()
	if !ok || identity.Username != "alice" {
		t.Errorf("expected an alice session, got %+v (ok=%v)", identity, ok)
	}
}
