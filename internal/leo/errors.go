package leo

import (
	"fmt"

	"votd/internal/services"
)

// Lookup failures that abandon the current verb.
var (
	ErrSectionNotFound         = fmt.Errorf("%w: leo: no verb section on search page", services.ErrVerbFailed)
	ErrNoEntriesFound          = fmt.Errorf("%w: leo: verb section has no entries", services.ErrVerbFailed)
	ErrNoTranslationChosen     = fmt.Errorf("%w: leo: no translation accepted", services.ErrVerbFailed)
	ErrConjugationLinkNotFound = fmt.Errorf("%w: leo: conjugation table link not found", services.ErrVerbFailed)
	ErrInfoLinkNotFound        = fmt.Errorf("%w: leo: grammar info link not found", services.ErrVerbFailed)
	ErrEmptyConjugationTable   = fmt.Errorf("%w: leo: conjugation table is empty", services.ErrVerbFailed)
)
