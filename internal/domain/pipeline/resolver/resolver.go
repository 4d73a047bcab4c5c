// Package resolver maps free-text supplier fragments to canonical catalog
// identities. Two modes are supported: substring alias lookup for fragments
// that plainly contain a configured alias, and approximate matching for
// everything else, with separate acceptance thresholds for clean form input
// and noisy OCR text.
package resolver

import (
	"log/slog"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/doppio-labs/fiscaldoc/internal/domain/catalog"
	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/textfold"
)

// Unresolved is the sentinel canonical name carried by records whose
// supplier no rule could map. Kept in Portuguese because it is what the
// operators see on the ledger.
const Unresolved = "NÃO SEI"

const (
	// DefaultFormThreshold accepts approximate matches on operator-typed
	// fragments.
	DefaultFormThreshold = 75
	// DefaultOCRThreshold is stricter: OCR text is matched against the
	// whole alias-key universe and produces far more accidental overlap.
	DefaultOCRThreshold = 85

	// minContainmentKeyLen gates substring alias matching. Keys shorter
	// than this ("gt") appear inside ordinary words ("pgto") and may only
	// match a fragment that equals them exactly.
	minContainmentKeyLen = 4
)

// Resolution is a successful (or sentinel) supplier mapping. Confidence is
// a 0–100 similarity score, kept for audit logging even when the match is
// accepted.
type Resolution struct {
	Canonical  string
	Confidence int
	// MatchedOn is the alias key or canonical name that produced the match.
	MatchedOn string
}

// Resolver resolves fragments against an immutable catalog.
type Resolver struct {
	cat           *catalog.Catalog
	formThreshold int
	ocrThreshold  int
	logger        *slog.Logger
}

// Option adjusts resolver thresholds.
type Option func(*Resolver)

// WithFormThreshold overrides the structured-input acceptance threshold.
func WithFormThreshold(score int) Option {
	return func(r *Resolver) { r.formThreshold = score }
}

// WithOCRThreshold overrides the OCR-text acceptance threshold.
func WithOCRThreshold(score int) Option {
	return func(r *Resolver) { r.ocrThreshold = score }
}

// New creates a Resolver over the given catalog.
func New(cat *catalog.Catalog, logger *slog.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		cat:           cat,
		formThreshold: DefaultFormThreshold,
		ocrThreshold:  DefaultOCRThreshold,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ResolveAlias canonicalizes a fragment containing a known alias key.
// Aliases are checked in configuration order; the first that appears in the
// fragment wins.
func (r *Resolver) ResolveAlias(fragment string) (Resolution, bool) {
	folded := textfold.Fold(strings.TrimSpace(fragment))
	if folded == "" {
		return Resolution{}, false
	}
	for _, alias := range r.cat.Aliases() {
		key := textfold.Fold(alias.Key)
		matched := false
		if len([]rune(key)) >= minContainmentKeyLen {
			matched = strings.Contains(folded, key)
		} else {
			matched = folded == key
		}
		if matched {
			return Resolution{Canonical: alias.Canonical, Confidence: 100, MatchedOn: alias.Key}, true
		}
	}
	return Resolution{}, false
}

// ResolveForm approximately matches an operator-supplied fragment against
// the distinct canonical names. The best match is accepted at or above the
// form threshold.
func (r *Resolver) ResolveForm(fragment string) (Resolution, bool) {
	return r.extract(fragment, r.cat.Canonicals(), r.formThreshold, false)
}

// ResolveOCR approximately matches noisy document text against the alias
// keys, under the stricter OCR threshold. The winning key is mapped through
// the alias table to its canonical name.
func (r *Resolver) ResolveOCR(text string) (Resolution, bool) {
	res, ok := r.extract(text, r.cat.AliasKeys(), r.ocrThreshold, true)
	if !ok {
		return Resolution{}, false
	}
	canonical, found := r.cat.CanonicalFor(res.MatchedOn)
	if !found {
		return Resolution{}, false
	}
	res.Canonical = canonical
	return res, true
}

// Resolve is the standard fragment path: exact alias containment first,
// then the approximate form-mode match.
func (r *Resolver) Resolve(fragment string) Resolution {
	if res, ok := r.ResolveAlias(fragment); ok {
		return res
	}
	if res, ok := r.ResolveForm(fragment); ok {
		return res
	}
	return Resolution{Canonical: Unresolved}
}

func (r *Resolver) extract(query string, choices []string, threshold int, partial bool) (Resolution, bool) {
	folded := textfold.Fold(strings.TrimSpace(query))
	if folded == "" || len(choices) == 0 {
		return Resolution{}, false
	}

	best := ""
	bestScore := 0
	for _, choice := range choices {
		candidate := textfold.Fold(choice)
		if partial && len([]rune(candidate)) < minContainmentKeyLen {
			continue
		}
		var score int
		if partial {
			// Substring-style scoring: the alias key is hunted inside the
			// larger OCR text.
			score = fuzzy.PartialRatio(candidate, folded)
		} else {
			score = fuzzy.TokenSortRatio(candidate, folded)
		}
		if score > bestScore {
			best = choice
			bestScore = score
		}
	}

	if bestScore < threshold {
		if r.logger != nil {
			r.logger.Debug("supplier match below threshold",
				"best", best, "score", bestScore, "threshold", threshold)
		}
		return Resolution{}, false
	}
	return Resolution{Canonical: best, Confidence: bestScore, MatchedOn: best}, true
}
