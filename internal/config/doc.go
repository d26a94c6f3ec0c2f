// Package config loads, normalizes, and validates votd configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes every knob the
// CLI needs: where the verb cache and collection live, which dictionary and
// blog endpoints to talk to, and how weekly decks are named.
//
// Credentials are not part of this package; see internal/secrets.
package config
