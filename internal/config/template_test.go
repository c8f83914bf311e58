package config

import (
	"os"
	"testing"

	"github.com/weiser-ai/weiser-go/internal/errs"
)

func errorIsConfigKind(err error) bool {
	return errs.Is(err, errs.KindConfig)
}

func TestExpandTemplateAmbientWinsOverFile(t *testing.T) {
	t.Setenv("WEISER_TEST_HOST", "ambient-host")
	got, err := expandTemplate("host: {{ WEISER_TEST_HOST }}", map[string]string{"WEISER_TEST_HOST": "file-host"}, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "host: ambient-host" {
		t.Fatalf("expected ambient to win, got %q", got)
	}
}

func TestExpandTemplateExplicitEnvFileWins(t *testing.T) {
	t.Setenv("WEISER_TEST_HOST", "ambient-host")
	got, err := expandTemplate("host: {{ WEISER_TEST_HOST }}", map[string]string{"WEISER_TEST_HOST": "file-host"}, true)
	if err != nil {
		t.Fatal(err)
	}
	if got != "host: file-host" {
		t.Fatalf("expected explicit env-file to win, got %q", got)
	}
}

func TestExpandTemplateUnresolvedIsConfigError(t *testing.T) {
	os.Unsetenv("WEISER_TEST_MISSING")
	_, err := expandTemplate("host: {{ WEISER_TEST_MISSING }}", map[string]string{}, false)
	if err == nil {
		t.Fatal("expected error for unresolved placeholder")
	}
	if !errorIsConfigKind(err) {
		t.Fatalf("expected a config error, got %v", err)
	}
}

func TestExpandTemplateIgnoresDollarBraceSyntax(t *testing.T) {
	got, err := expandTemplate("host: ${NOT_A_TEMPLATE}", map[string]string{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if got != "host: ${NOT_A_TEMPLATE}" {
		t.Fatalf("expected ${...} left untouched, got %q", got)
	}
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/.env"
	if err := os.WriteFile(path, []byte("# comment\nFOO=bar\nBAZ=\"quoted\"\n\nQUUX='single'\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	vars, err := loadEnvFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"FOO": "bar", "BAZ": "quoted", "QUUX": "single"}
	for k, v := range want {
		if vars[k] != v {
			t.Fatalf("vars[%q] = %q, want %q", k, vars[k], v)
		}
	}
}
