package main

import (
	"testing"

	"votd/internal/testsupport"
)

func TestPostRequiresBlogSettings(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"post", "--yes", "gehen"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected publishing configuration error")
	}
	requireContains(t, err.Error(), "wordpress.site")
}

func TestPostRequiresYesWithoutTerminal(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithWordPress("http://127.0.0.1:1", "blog.test", "42"))
	_, _, err := runCLI(t, []string{"post", "gehen"}, env.configPath, "y\n")
	if err == nil {
		t.Fatal("expected --yes requirement")
	}
	requireContains(t, err.Error(), "--yes")
}

func TestPostRequiresCredentials(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithWordPress("http://127.0.0.1:1", "blog.test", "42"))
	for _, key := range []string{"VOTD_WP_CLIENT_ID", "VOTD_WP_CLIENT_SECRET", "VOTD_WP_USERNAME", "VOTD_WP_PASSWORD"} {
		t.Setenv(key, "")
	}
	_, _, err := runCLI(t, []string{"post", "--yes", "gehen"}, env.configPath, "")
	if err == nil {
		t.Fatal("expected missing credentials error")
	}
	requireContains(t, err.Error(), "VOTD_WP_CLIENT_ID")
}
