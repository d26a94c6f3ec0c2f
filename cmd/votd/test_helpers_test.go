package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"votd/internal/config"
	"votd/internal/conjugation"
	"votd/internal/leo"
	"votd/internal/testsupport"
	"votd/internal/verbcache"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

// setupCLITestEnv writes a config whose dictionary endpoint fails the test
// on any lookup request, so every record must come from the seeded cache.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()
	leoServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || r.URL.Path == "" {
			// preflight reachability check
			w.WriteHeader(http.StatusOK)
			return
		}
		t.Errorf("unexpected dictionary request: %s", r.URL.Path)
		http.Error(w, "offline", http.StatusServiceUnavailable)
	}))
	t.Cleanup(leoServer.Close)

	t.Setenv("HOME", t.TempDir())
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithLeoBaseURL(leoServer.URL)}, opts...)...)
	base := testsupport.BaseDir(cfg)
	path := testsupport.WriteConfig(t, cfg, filepath.Join(base, "config.toml"))
	return &cliTestEnv{cfg: cfg, configPath: path, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath, stdin string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// seedVerb stores a complete record for word so lookups stay offline.
func seedVerb(t *testing.T, cfg *config.Config, word, gloss string) {
	t.Helper()
	stem := strings.TrimSuffix(word, "en")
	table := conjugation.Table{Moods: []conjugation.Mood{{
		Name: "Indikativ",
		Tenses: []conjugation.Tense{{
			Name: "Präsens",
			Inflection: conjugation.ByPronoun(
				conjugation.PronounForm{Pronoun: "ich", Form: stem + "e"},
				conjugation.PronounForm{Pronoun: "du", Form: stem + "st"},
			),
		}},
	}}}
	values := map[string]any{
		leo.FieldRows:               []string{"<tr></tr>"},
		leo.FieldTranslations:       []string{gloss},
		leo.FieldTableLink:          "https://dict.test/table/" + word,
		leo.FieldTableKey:           "de_" + word,
		leo.FieldTargetTableLink:    "",
		leo.FieldTargetTableKey:     "",
		leo.FieldInfoKey:            "AI_" + word,
		leo.FieldConjugations:       table,
		leo.FieldTargetConjugations: conjugation.Table{},
	}
	fields := verbcache.Fields{}
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			t.Fatalf("encode %s: %v", key, err)
		}
		fields[key] = raw
	}
	cache, err := verbcache.Open(cfg.Paths.CachePath, nil)
	if err != nil {
		t.Fatalf("verbcache.Open: %v", err)
	}
	defer cache.Close()
	if err := cache.Put(context.Background(), word, fields); err != nil {
		t.Fatalf("seed %s: %v", word, err)
	}
}
