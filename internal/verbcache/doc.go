// Package verbcache persists dictionary lookups keyed by headword so repeated
// lookups skip scraping and the interactive translation review.
//
// Each entry is a JSON object of named fields. Writes merge into the stored
// object, so an entry is only ever extended: a field added by a newer lookup
// is kept alongside every field an older lookup stored. The store is a single
// SQLite file opened once per run.
package verbcache
