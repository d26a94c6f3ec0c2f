// Package ledger models the decks of a collection as weeks: each week holds
// one infinitive deck named "<root>::Week N" and one child deck per
// configured tense. The ledger decides which week is open for new verbs and
// opens the next one when the current infinitive deck is full.
package ledger
