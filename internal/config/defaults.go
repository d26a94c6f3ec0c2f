package config

const (
	defaultConfigPath     = "~/.config/votd/config.toml"
	defaultDataDir        = "~/.local/share/votd"
	defaultCacheName      = "verbs.db"
	defaultCollectionName = "collection.db"
	defaultPackageDir     = "~/.local/share/votd/packages"
	defaultAudioDir       = "~/.local/share/votd/forvo"
	defaultLogDir         = "~/.local/share/votd/logs"
	defaultEnvFile        = "~/.config/votd/.env"

	defaultLeoBaseURL        = "https://dict.leo.org"
	defaultLeoUserAgent      = "Mozilla/5.0 (iPad; CPU OS 14_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) CriOS/87.0.4280.77 Mobile/15E148 Safari/604.1"
	defaultLeoTimeoutSeconds = 30

	defaultForvoBaseURL  = "https://apifree.forvo.com/key"
	defaultForvoLanguage = "de"
	defaultForvoCountry  = "DEU"

	defaultWordPressAPIURL       = "https://public-api.wordpress.com/rest/v1.1"
	defaultWordPressSearchAPIURL = "https://public-api.wordpress.com/rest/v1.2"
	defaultWordPressOAuthURL     = "https://public-api.wordpress.com/oauth2/token"
	defaultWordPressCategory     = "Verbs"

	defaultDriveFolder = "DeVOTD"

	defaultNotifyTimeoutSeconds = 10

	defaultRootName    = "German VotD"
	defaultDefaultName = "Default"
	defaultWeekSize    = 7
	defaultNoteModel   = "Basic (and reversed card)"
	defaultTenseModel  = "Basic"

	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 30
)

func defaultTenses() []Tense {
	return []Tense{{Name: "Present", Mood: "Indikativ", Tense: "Präsens"}}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			PackageDir: defaultPackageDir,
			AudioDir:   defaultAudioDir,
			LogDir:     defaultLogDir,
			EnvFile:    defaultEnvFile,
		},
		Leo: Leo{
			BaseURL:        defaultLeoBaseURL,
			UserAgent:      defaultLeoUserAgent,
			TimeoutSeconds: defaultLeoTimeoutSeconds,
		},
		Forvo: Forvo{
			Enabled:  true,
			BaseURL:  defaultForvoBaseURL,
			Language: defaultForvoLanguage,
			Country:  defaultForvoCountry,
		},
		WordPress: WordPress{
			APIURL:       defaultWordPressAPIURL,
			SearchAPIURL: defaultWordPressSearchAPIURL,
			OAuthURL:     defaultWordPressOAuthURL,
			Category:     defaultWordPressCategory,
			Categories:   []string{defaultWordPressCategory},
		},
		Drive: Drive{
			Folder: defaultDriveFolder,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNotifyTimeoutSeconds,
		},
		Decks: Decks{
			RootName:    defaultRootName,
			DefaultName: defaultDefaultName,
			WeekSize:    defaultWeekSize,
			Tenses:      defaultTenses(),
			NoteModel:   defaultNoteModel,
			TenseModel:  defaultTenseModel,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
