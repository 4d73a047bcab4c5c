// Package catalog holds the static business configuration the pipeline is
// resolved against: the alias → canonical supplier table and the
// month → ledger/archive destination table. A Catalog is built once at
// startup and is immutable afterwards, so it can be shared across
// submissions without locking.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Alias maps a lowercased fragment key to the canonical supplier name used
// as the ledger identity. Order matters: when more than one alias matches a
// fragment, the first configured alias wins.
type Alias struct {
	Key       string `json:"key"`
	Canonical string `json:"canonical"`
}

// Destination names where a period's records go: the ledger worksheet tab
// and the archive folder for that month.
type Destination struct {
	LedgerTab     string `json:"ledger_tab"`
	ArchiveFolder string `json:"archive_folder"`
}

// PeriodBucket is the routing key derived from a record's date. It carries
// the month together with its resolved destination.
type PeriodBucket struct {
	Month         time.Month
	LedgerTab     string
	ArchiveFolder string
}

// Catalog is the read-only supplier and period configuration.
type Catalog struct {
	ownName    string
	aliases    []Alias
	canonicals []string
	aliasKeys  []string
	periods    map[time.Month]Destination
}

// Option configures optional Catalog behavior at construction time.
type Option func(*Catalog)

// WithOwnName sets the business's own legal-name alias. A fragment matching
// it is never accepted as a supplier: it identifies the payer, not the payee.
func WithOwnName(name string) Option {
	return func(c *Catalog) { c.ownName = name }
}

// New builds a Catalog from an ordered alias list and a month destination
// table. The alias slice is copied; callers cannot mutate the catalog later.
func New(aliases []Alias, periods map[time.Month]Destination, opts ...Option) *Catalog {
	c := &Catalog{
		aliases: append([]Alias(nil), aliases...),
		periods: make(map[time.Month]Destination, len(periods)),
	}
	for m, d := range periods {
		c.periods[m] = d
	}

	seen := make(map[string]bool, len(aliases))
	for _, a := range c.aliases {
		c.aliasKeys = append(c.aliasKeys, a.Key)
		if !seen[a.Canonical] {
			seen[a.Canonical] = true
			c.canonicals = append(c.canonicals, a.Canonical)
		}
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// fileSchema is the on-disk JSON shape accepted by Load.
type fileSchema struct {
	OwnName string           `json:"own_name"`
	Aliases []Alias          `json:"aliases"`
	Periods map[string]Destination `json:"periods"`
}

// Load reads a catalog definition from a JSON file. Period keys are month
// numbers 1..12. Options are applied after the file's own values, so callers
// can override them.
func Load(path string, opts ...Option) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var raw fileSchema
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}
	if len(raw.Aliases) == 0 {
		return nil, fmt.Errorf("catalog file %s defines no supplier aliases", path)
	}

	periods := make(map[time.Month]Destination, len(raw.Periods))
	for key, dest := range raw.Periods {
		n, err := strconv.Atoi(key)
		if err != nil || n < 1 || n > 12 {
			return nil, fmt.Errorf("invalid period key %q in catalog file", key)
		}
		periods[time.Month(n)] = dest
	}

	base := []Option{WithOwnName(raw.OwnName)}
	return New(raw.Aliases, periods, append(base, opts...)...), nil
}

// OwnName returns the payer's own legal-name alias, or "" if not configured.
func (c *Catalog) OwnName() string { return c.ownName }

// Aliases returns the alias table in configuration order.
func (c *Catalog) Aliases() []Alias { return c.aliases }

// AliasKeys returns only the alias keys, in configuration order.
func (c *Catalog) AliasKeys() []string { return c.aliasKeys }

// Canonicals returns the distinct canonical supplier names in first-seen
// order.
func (c *Catalog) Canonicals() []string { return c.canonicals }

// CanonicalFor returns the canonical name for an exact alias key.
func (c *Catalog) CanonicalFor(key string) (string, bool) {
	for _, a := range c.aliases {
		if a.Key == key {
			return a.Canonical, true
		}
	}
	return "", false
}

// Bucket resolves a month to its period bucket. The second return is false
// when no destination is configured for that month.
func (c *Catalog) Bucket(m time.Month) (PeriodBucket, bool) {
	dest, ok := c.periods[m]
	if !ok {
		return PeriodBucket{}, false
	}
	return PeriodBucket{Month: m, LedgerTab: dest.LedgerTab, ArchiveFolder: dest.ArchiveFolder}, true
}
