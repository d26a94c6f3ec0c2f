// Package secrets reads the credentials votd needs from the environment,
// optionally seeded from a dotenv file.
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"votd/internal/services"
)

// Credentials holds API keys and account details. Values are never logged.
type Credentials struct {
	WordPressClientID     string `env:"VOTD_WP_CLIENT_ID"`
	WordPressClientSecret string `env:"VOTD_WP_CLIENT_SECRET"`
	WordPressUsername     string `env:"VOTD_WP_USERNAME"`
	WordPressPassword     string `env:"VOTD_WP_PASSWORD"`
	ForvoAPIKey           string `env:"VOTD_FORVO_API_KEY"`
	DriveClientID         string `env:"VOTD_DRIVE_CLIENT_ID"`
	DriveClientSecret     string `env:"VOTD_DRIVE_CLIENT_SECRET"`
	DriveRefreshToken     string `env:"VOTD_DRIVE_REFRESH_TOKEN"`
}

// Load fills Credentials from VOTD_* environment variables. When envFile
// exists it is loaded first; variables already set in the environment win.
func Load(envFile string) (Credentials, error) {
	if path := strings.TrimSpace(envFile); path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return Credentials{}, services.Wrap(services.ErrConfiguration, "secrets", "load env file", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return Credentials{}, services.Wrap(services.ErrConfiguration, "secrets", "stat env file", path, err)
		}
	}

	var creds Credentials
	if err := cleanenv.ReadEnv(&creds); err != nil {
		return Credentials{}, services.Wrap(services.ErrConfiguration, "secrets", "read env", "", err)
	}
	return creds, nil
}

// RequireWordPress reports the WordPress variables that are still unset.
func (c Credentials) RequireWordPress() error {
	return require(
		envValue{"VOTD_WP_CLIENT_ID", c.WordPressClientID},
		envValue{"VOTD_WP_CLIENT_SECRET", c.WordPressClientSecret},
		envValue{"VOTD_WP_USERNAME", c.WordPressUsername},
		envValue{"VOTD_WP_PASSWORD", c.WordPressPassword},
	)
}

// RequireForvo reports whether the Forvo API key is unset.
func (c Credentials) RequireForvo() error {
	return require(envValue{"VOTD_FORVO_API_KEY", c.ForvoAPIKey})
}

// RequireDrive reports the Google Drive OAuth variables that are still unset.
func (c Credentials) RequireDrive() error {
	return require(
		envValue{"VOTD_DRIVE_CLIENT_ID", c.DriveClientID},
		envValue{"VOTD_DRIVE_CLIENT_SECRET", c.DriveClientSecret},
		envValue{"VOTD_DRIVE_REFRESH_TOKEN", c.DriveRefreshToken},
	)
}

type envValue struct {
	name  string
	value string
}

func require(values ...envValue) error {
	var missing []string
	for _, v := range values {
		if strings.TrimSpace(v.value) == "" {
			missing = append(missing, v.name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "secrets", "require",
		fmt.Sprintf("missing environment variables: %s", strings.Join(missing, ", ")), nil)
}
