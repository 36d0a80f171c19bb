package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/lfmgenre/internal/shared"
	"github.com/desertthunder/lfmgenre/internal/tagfile"
	tu "github.com/desertthunder/lfmgenre/internal/testing"
)

// runCommand runs a throwaway command with flags so actions can read them.
func runCommand(t *testing.T, flags []cli.Flag, args []string, action cli.ActionFunc) {
	t.Helper()
	cmd := &cli.Command{Name: "test", Flags: flags, Action: action}
	if err := cmd.Run(context.Background(), append([]string{"test"}, args...)); err != nil {
		t.Fatalf("command failed: %v", err)
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			files := tu.NewMockFiles()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Files:      files,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.files != files {
				t.Error("expected files to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses configured timeout", func(t *testing.T) {
			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{Config: config})

			if runner.httpClient == nil || runner.httpClient.Timeout != config.LastFM.Timeout() {
				t.Errorf("expected httpClient with timeout %v", config.LastFM.Timeout())
			}
		})

		t.Run("with nil files reads real audio files", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if _, ok := runner.files.(tagfile.Files); !ok {
				t.Errorf("expected tagfile.Files, got %T", runner.files)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

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

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

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

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("writePlainln surrounds with newlines", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlainln("Genre: %s", "Shoegaze"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if output.String() != "\nGenre: Shoegaze\n" {
				t.Errorf("unexpected output %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

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

		names := make(map[string]bool)
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}

		for _, want := range []string{"setup", "tag", "lookup", "tracks", "runs", "config", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})

	t.Run("runOptions", func(t *testing.T) {
		flags := func() []cli.Flag {
			return []cli.Flag{
				&cli.BoolFlag{Name: "dry-run"},
				&cli.IntFlag{Name: "workers"},
			}
		}

		t.Run("uses library settings", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Library.Workers = 6
			runner := NewRunner(RunnerOpts{Config: config})

			runCommand(t, flags(), nil, func(ctx context.Context, cmd *cli.Command) error {
				opts := runner.runOptions(cmd)
				if opts.DryRun || opts.Workers != 6 || len(opts.Extensions) != 2 {
					t.Errorf("unexpected options %+v", opts)
				}
				return nil
			})
		})

		t.Run("flags override", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			runCommand(t, flags(), []string{"--dry-run", "--workers", "2"}, func(ctx context.Context, cmd *cli.Command) error {
				opts := runner.runOptions(cmd)
				if !opts.DryRun || opts.Workers != 2 {
					t.Errorf("unexpected options %+v", opts)
				}
				return nil
			})
		})
	})

	t.Run("Before", func(t *testing.T) {
		// Flag values persist across runs, so every subtest gets its own.
		flags := func() []cli.Flag {
			return []cli.Flag{
				&cli.StringFlag{Name: "config", Value: "config.toml"},
				&cli.BoolFlag{Name: "verbose"},
			}
		}

		t.Run("loads config file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			content := "[tagging]\nmin_tag_usage = 40\n\n[log]\nlevel = \"warn\"\n"
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			logger := shared.NewLogger(&bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Logger: logger})
			runCommand(t, flags(), []string{"--config", path}, func(ctx context.Context, cmd *cli.Command) error {
				_, err := runner.Before(ctx, cmd)
				return err
			})

			if runner.config.Tagging.MinTagUsage != 40 {
				t.Errorf("expected min_tag_usage 40, got %d", runner.config.Tagging.MinTagUsage)
			}
			if logger.GetLevel() != log.WarnLevel {
				t.Errorf("expected warn level, got %v", logger.GetLevel())
			}
		})

		t.Run("verbose enables debug", func(t *testing.T) {
			logger := shared.NewLogger(&bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Logger: logger, ConfigPath: filepath.Join(t.TempDir(), "none.toml")})
			runCommand(t, flags(), []string{"--verbose"}, func(ctx context.Context, cmd *cli.Command) error {
				_, err := runner.Before(ctx, cmd)
				return err
			})

			if logger.GetLevel() != log.DebugLevel {
				t.Errorf("expected debug level, got %v", logger.GetLevel())
			}
		})

		t.Run("explicit missing config fails", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{})})
			missing := filepath.Join(t.TempDir(), "missing.toml")

			var got error
			runCommand(t, flags(), []string{"--config", missing}, func(ctx context.Context, cmd *cli.Command) error {
				_, got = runner.Before(ctx, cmd)
				return nil
			})

			if !errors.Is(got, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", got)
			}
		})
	})

	t.Run("tagEngine requires an API key", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		_, err := runner.tagEngine()
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("Close leaves injected database open", func(t *testing.T) {
		db := newTestDB(t)
		runner := NewRunner(RunnerOpts{DB: db})

		if err := runner.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		if err := db.Ping(); err != nil {
			t.Errorf("expected injected database to stay open, got %v", err)
		}
	})

	t.Run("maskSecret", func(t *testing.T) {
		if got := maskSecret("abcdef123456"); got != "****3456" {
			t.Errorf("expected ****3456, got %s", got)
		}
		if got := maskSecret("abc"); got != "****" {
			t.Errorf("expected ****, got %s", got)
		}
	})
}
