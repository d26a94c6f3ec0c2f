package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"votd/internal/testsupport"
)

func TestBacklogFromVerbsFile(t *testing.T) {
	env := setupCLITestEnv(t)
	verbs := testsupport.WriteFile(t, filepath.Join(env.baseDir, "verbs.txt"), "# posted\ngehen\n\nkommen\nsehen\n")

	out, _, err := runCLI(t, []string{"backlog", "--verbs-file", verbs}, env.configPath, "")
	if err != nil {
		t.Fatalf("backlog: %v", err)
	}
	requireContains(t, out, "#\tVerb")
	requireContains(t, out, "1\tgehen\n2\tkommen\n3\tsehen")
}

func TestDecksUpdateFromCache(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithWeekSize(2))
	seedVerb(t, env.cfg, "gehen", "to go")
	seedVerb(t, env.cfg, "kommen", "to come")
	seedVerb(t, env.cfg, "sehen", "to see")
	verbs := testsupport.WriteFile(t, filepath.Join(env.baseDir, "verbs.txt"), "gehen\nkommen\nsehen\n")

	out, _, err := runCLI(t, []string{"decks", "update", "--verbs-file", verbs}, env.configPath, "")
	if err != nil {
		t.Fatalf("decks update: %v", err)
	}
	requireContains(t, out, "Added: 3 of 3")
	for _, name := range []string{"German VotD.apkg", "German VotD__Week 2.apkg"} {
		if _, err := os.Stat(filepath.Join(env.cfg.Paths.PackageDir, name)); err != nil {
			t.Fatalf("package %s: %v", name, err)
		}
	}

	out, _, err = runCLI(t, []string{"decks", "list"}, env.configPath, "")
	if err != nil {
		t.Fatalf("decks list: %v", err)
	}
	requireContains(t, out, "\tGerman VotD::Week 1\t1\t\t")
	requireContains(t, out, "\tGerman VotD::Week 1::Present\t1\tPresent\t")
	requireContains(t, out, "\tGerman VotD::Week 2\t2\t\t")

	out, _, err = runCLI(t, []string{"decks", "update", "--verbs-file", verbs}, env.configPath, "")
	if err != nil {
		t.Fatalf("second decks update: %v", err)
	}
	requireContains(t, out, "Decks are up to date")
}

func TestDecksUpdateDryRun(t *testing.T) {
	env := setupCLITestEnv(t)
	verbs := testsupport.WriteFile(t, filepath.Join(env.baseDir, "verbs.txt"), "gehen\n")

	out, _, err := runCLI(t, []string{"decks", "update", "--dry-run", "--verbs-file", verbs}, env.configPath, "")
	if err != nil {
		t.Fatalf("decks update --dry-run: %v", err)
	}
	requireContains(t, out, "1\tgehen")
	entries, err := os.ReadDir(env.cfg.Paths.PackageDir)
	if err != nil && !os.IsNotExist(err) {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".apkg") {
			t.Fatalf("dry run wrote %s", entry.Name())
		}
	}
}

func TestDecksUpdateNeedsVerbSource(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"decks", "update"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected error without blog or verbs file")
	}
	requireContains(t, err.Error(), "--verbs-file")
}
