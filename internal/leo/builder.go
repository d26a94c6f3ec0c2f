package leo

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"votd/internal/conjugation"
	"votd/internal/logging"
	"votd/internal/services"
	"votd/internal/textutil"
	"votd/internal/verbcache"
)

// Cache persists partially built records between runs.
type Cache interface {
	Get(ctx context.Context, word string) (verbcache.Fields, error)
	Put(ctx context.Context, word string, fields verbcache.Fields) error
}

// Decision is the operator's answer to a translation candidate.
type Decision int

const (
	Reject Decision = iota
	Accept
	Quit
)

// TranslationReviewer approves English glosses. accepted holds the glosses
// already approved for verb in this review.
type TranslationReviewer interface {
	ReviewTranslation(ctx context.Context, verb, candidate string, accepted []string) (Decision, error)
}

// ReviewerFunc adapts a function to TranslationReviewer.
type ReviewerFunc func(ctx context.Context, verb, candidate string, accepted []string) (Decision, error)

// ReviewTranslation calls f.
func (f ReviewerFunc) ReviewTranslation(ctx context.Context, verb, candidate string, accepted []string) (Decision, error) {
	return f(ctx, verb, candidate, accepted)
}

// Builder resolves verb records, fetching only what the cache lacks.
type Builder struct {
	fetcher  Fetcher
	cache    Cache
	reviewer TranslationReviewer
	baseURL  string
	logger   *slog.Logger
}

// NewBuilder wires a Builder. baseURL is the site root for search pages and
// relative table links.
func NewBuilder(fetcher Fetcher, cache Cache, reviewer TranslationReviewer, baseURL string, logger *slog.Logger) *Builder {
	return &Builder{
		fetcher:  fetcher,
		cache:    cache,
		reviewer: reviewer,
		baseURL:  baseURL,
		logger:   logging.NewComponentLogger(logger, "leo"),
	}
}

// lookup tracks one Build call.
type lookup struct {
	b      *Builder
	word   string
	fields verbcache.Fields
	dirty  verbcache.Fields
	rec    *Record
}

// Build returns the record for word. Fields gathered before a failure are
// cached regardless, so a retry resumes where this call stopped.
func (b *Builder) Build(ctx context.Context, word string) (rec *Record, err error) {
	ctx = services.WithVerb(ctx, word)
	logger := logging.WithContext(ctx, b.logger)

	fields, err := b.cache.Get(ctx, word)
	switch {
	case errors.Is(err, verbcache.ErrNotFound):
		fields = verbcache.Fields{}
	case err != nil:
		return nil, services.Wrap(services.ErrRunAborted, "leo", "read cache", word, err)
	}
	decoded, dropped := decodeRecord(word, fields)
	for _, key := range dropped {
		logging.WarnWithContext(logger, "discarding undecodable cached field", "cache_field_invalid",
			logging.String("field", key),
			logging.String(logging.FieldImpact, "field will be rebuilt"),
		)
	}
	l := &lookup{b: b, word: word, fields: fields, dirty: verbcache.Fields{}, rec: decoded}

	defer func() {
		if len(l.dirty) == 0 {
			return
		}
		if putErr := b.cache.Put(ctx, word, l.dirty); putErr != nil {
			wrapped := services.Wrap(services.ErrRunAborted, "leo", "write cache", word, putErr)
			if err == nil {
				rec, err = nil, wrapped
			} else {
				err = errors.Join(err, wrapped)
			}
		}
	}()

	if err := l.run(ctx); err != nil {
		return nil, err
	}
	if len(l.dirty) == 0 {
		logger.Debug("verb served from cache")
	} else {
		logger.Info("verb record built", logging.Strings("fields", sortedKeys(l.dirty)))
	}
	return l.rec, nil
}

func (l *lookup) has(key string) bool {
	return l.fields.Has(key)
}

func (l *lookup) set(key string, value any) error {
	raw, err := encodeField(value)
	if err != nil {
		return services.Wrap(services.ErrVerbFailed, "leo", "encode "+key, l.word, err)
	}
	l.fields[key] = raw
	l.dirty[key] = raw
	return nil
}

func (l *lookup) run(ctx context.Context) error {
	needRows := !l.hasTranslations() ||
		!l.has(FieldTableLink) || !l.has(FieldTargetTableLink) || !l.has(FieldInfoKey)
	if needRows && !l.has(FieldRows) {
		if err := l.fetchRows(ctx); err != nil {
			return err
		}
	}
	if !l.hasTranslations() {
		if err := l.reviewTranslations(ctx); err != nil {
			return err
		}
	}
	if err := l.resolveLinks(ctx); err != nil {
		return err
	}
	if !l.has(FieldConjugations) {
		if err := l.fetchConjugations(ctx); err != nil {
			return err
		}
	}
	if !l.has(FieldTargetConjugations) {
		if err := l.fetchTargetConjugations(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (l *lookup) hasTranslations() bool {
	return l.has(FieldTranslations) && len(l.rec.Translations) > 0
}

func (l *lookup) fetchRows(ctx context.Context) error {
	ctx = services.WithStage(ctx, "search")
	page, err := l.b.fetcher.Fetch(ctx, SearchURL(l.b.baseURL, l.word))
	if err != nil {
		return services.Wrap(services.ErrVerbFailed, "leo", "fetch search page", l.word, err)
	}
	section, err := VerbSection(textutil.SanitizeMarkup(page))
	if err != nil {
		return err
	}
	rows, err := EntryRows(section)
	if err != nil {
		return err
	}
	l.rec.Rows = rows
	return l.set(FieldRows, rows)
}

func (l *lookup) reviewTranslations(ctx context.Context) error {
	ctx = services.WithStage(ctx, "review")
	var accepted []string
	for _, row := range l.rec.Rows {
		candidate, ok := TranslationCandidate(row)
		if !ok {
			continue
		}
		decision, err := l.b.reviewer.ReviewTranslation(ctx, l.word, candidate, accepted)
		if err != nil {
			return services.Wrap(services.ErrRunAborted, "leo", "review translation", l.word, err)
		}
		switch decision {
		case Accept:
			accepted = append(accepted, candidate)
		case Quit:
			return services.Wrap(services.ErrUserQuit, "leo", "review translation", l.word, nil)
		}
	}
	if len(accepted) == 0 {
		return ErrNoTranslationChosen
	}
	l.rec.Translations = accepted
	return l.set(FieldTranslations, accepted)
}

// resolveLinks records every link it can find before reporting the first
// one that is missing.
func (l *lookup) resolveLinks(ctx context.Context) error {
	logger := logging.WithContext(services.WithStage(ctx, "links"), l.b.logger)
	var missing error

	if !l.has(FieldTableLink) {
		if link, ok := FindTableLink(l.rec.Rows, l.word, l.b.baseURL); ok {
			l.rec.TableLink, l.rec.TableKey = link.URL, link.Key
			if err := l.setAll(FieldTableLink, link.URL, FieldTableKey, link.Key); err != nil {
				return err
			}
		} else {
			missing = ErrConjugationLinkNotFound
		}
	}

	if !l.has(FieldTargetTableLink) {
		english := l.rec.EnglishVerb()
		link, ok := FindTableLink(l.rec.Rows, english, l.b.baseURL)
		if !ok {
			logging.WarnWithContext(logger, "english conjugation link not found", "target_table_missing",
				logging.String("english_verb", english),
				logging.String(logging.FieldImpact, "english conjugations will be empty"),
			)
		}
		l.rec.TargetTableLink, l.rec.TargetTableKey = link.URL, link.Key
		if err := l.setAll(FieldTargetTableLink, link.URL, FieldTargetTableKey, link.Key); err != nil {
			return err
		}
	}

	if !l.has(FieldInfoKey) {
		if key, ok := FindInfoKey(l.rec.Rows); ok {
			l.rec.InfoKey = key
			if err := l.set(FieldInfoKey, key); err != nil {
				return err
			}
		} else if missing == nil {
			missing = ErrInfoLinkNotFound
		}
	}
	return missing
}

func (l *lookup) setAll(kv ...string) error {
	for i := 0; i+1 < len(kv); i += 2 {
		if err := l.set(kv[i], kv[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func (l *lookup) fetchConjugations(ctx context.Context) error {
	ctx = services.WithStage(ctx, "conjugations")
	table, err := l.fetchTable(ctx, l.rec.TableLink, conjugation.German)
	if err != nil {
		return err
	}
	if table.Empty() {
		return ErrEmptyConjugationTable
	}
	l.rec.Conjugations = table
	return l.set(FieldConjugations, table)
}

func (l *lookup) fetchTargetConjugations(ctx context.Context) error {
	ctx = services.WithStage(ctx, "target_conjugations")
	var table conjugation.Table
	if l.rec.TargetTableLink != "" {
		var err error
		table, err = l.fetchTable(ctx, l.rec.TargetTableLink, conjugation.English)
		if err != nil {
			return err
		}
	}
	l.rec.TargetConjugations = table
	return l.set(FieldTargetConjugations, table)
}

func (l *lookup) fetchTable(ctx context.Context, link string, vocab conjugation.Vocabulary) (conjugation.Table, error) {
	page, err := l.b.fetcher.Fetch(ctx, link)
	if err != nil {
		return conjugation.Table{}, services.Wrap(services.ErrVerbFailed, "leo", "fetch conjugation table", link, err)
	}
	table, err := conjugation.Extract(page, vocab)
	if err != nil {
		return conjugation.Table{}, services.Wrap(services.ErrVerbFailed, "leo", "extract conjugations", link, err)
	}
	return table, nil
}

func sortedKeys(fields verbcache.Fields) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
