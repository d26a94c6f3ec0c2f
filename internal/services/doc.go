// Package services defines shared utilities consumed by the workflow and the
// external integrations (dictionary, audio, blog, package sync).
//
// Key responsibilities:
//   - Context helpers that stamp the current verb, stage, and deck week for
//     logging.
//   - Structured error markers plus the Wrap helper that separate failures
//     which only abort one verb from failures which abort the whole run.
//
// Use these helpers when wiring new integrations so error handling and
// observability stay uniform across commands.
package services
