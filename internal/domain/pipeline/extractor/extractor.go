// Package extractor turns raw OCR text into candidate record fields.
// It knows the two document shapes the business receives: boletos (payment
// slips, "beneficiário" header) and DANFEs (tax invoices, "destinatário"
// header). Every rule is best effort: a rule that does not match leaves its
// field empty and the caller decides what to do with the gaps.
package extractor

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/doppio-labs/fiscaldoc/internal/domain/catalog"
	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/normalizer"
	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/textfold"
)

// CandidateFields is the per-document extraction result. All fields are
// optional strings in document display format; parsing into exact values
// happens later, at standardization.
type CandidateFields struct {
	SupplierFragment string
	AmountText       string
	IssueDate        string
	DueDate          string
	PaymentDate      string
	DocumentNumber   string

	// LowConfidence marks documents where the amount heuristic had several
	// near-equal candidates to choose from and may well have picked wrong.
	LowConfidence bool
}

// Empty reports whether extraction produced nothing usable.
func (c CandidateFields) Empty() bool {
	return c.SupplierFragment == "" && c.AmountText == "" && c.IssueDate == "" &&
		c.DueDate == "" && c.PaymentDate == "" && c.DocumentNumber == ""
}

// DateRolePolicy assigns issue and due roles to unlabeled dates. The default
// assumes documents list dates chronologically: earliest printed date is the
// issue date, latest is the due date.
type DateRolePolicy func(dates []time.Time) (issue, due time.Time)

// AmountFallbackPolicy picks one amount when no labeled amount was found.
// The default takes the largest, on the assumption that ancillary charges
// are smaller than the principal.
type AmountFallbackPolicy func(candidates []string) string

// Policies bundles the overridable extraction heuristics.
type Policies struct {
	DateRole        DateRolePolicy
	AmountFallback  AmountFallbackPolicy
	AmbiguitySpread float64 // relative spread under which amounts count as near-equal
}

// DefaultPolicies returns the heuristics observed to work on the business's
// document mix.
func DefaultPolicies() Policies {
	return Policies{
		DateRole: func(dates []time.Time) (time.Time, time.Time) {
			return dates[0], dates[len(dates)-1]
		},
		AmountFallback:  largestAmount,
		AmbiguitySpread: 0.10,
	}
}

// Option overrides a default on a new Extractor.
type Option func(*Extractor)

// WithPolicies replaces the default heuristics.
func WithPolicies(p Policies) Option {
	return func(e *Extractor) { e.policies = p }
}

// Extractor parses raw document text against a supplier catalog.
type Extractor struct {
	cat      *catalog.Catalog
	policies Policies
	logger   *slog.Logger
}

// New creates an Extractor bound to a catalog.
func New(cat *catalog.Catalog, logger *slog.Logger, opts ...Option) *Extractor {
	e := &Extractor{
		cat:      cat,
		policies: DefaultPolicies(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var (
	amountToken     = regexp.MustCompile(`\d{1,3}(?:\.\d{3})*,\d{2}`)
	receiptAmount   = regexp.MustCompile(`R\$\s*([\d.,]+)`)
	invoiceNumber   = regexp.MustCompile(`(?i)N[º°o]?\s*(\d+)`)
	amountLabels    = []string{"valor total da nota", "valor do documento", "(=) valor cobrado"}
	issueLabels     = []string{"data de emissao", "emissao"}
	dueLabels       = []string{"data de vencimento", "vencimento"}
	paymentLabels   = []string{"data do pagamento", "data de pagamento"}
	minAliasKeyLen  = 4
	invoiceNameSkip = 2 // recipient name sits a fixed offset below the label
)

// Extract parses one document's OCR text into candidate fields. Empty or
// corrupt input yields zero-value fields; Extract never fails outright.
func (e *Extractor) Extract(text string) CandidateFields {
	var out CandidateFields
	if strings.TrimSpace(text) == "" {
		return out
	}

	lines := strings.Split(text, "\n")
	foldedText := textfold.Fold(text)
	isInvoice := strings.Contains(foldedText, "danfe")

	e.extractDates(lines, text, &out)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		folded := textfold.Fold(line)

		if out.SupplierFragment == "" {
			if strings.Contains(folded, "beneficiario") {
				out.SupplierFragment = e.acceptSupplier(afterColonOrNextLine(line, lines, i))
			} else if strings.Contains(folded, "destinatario") {
				if i+invoiceNameSkip < len(lines) {
					out.SupplierFragment = e.acceptSupplier(strings.TrimSpace(lines[i+invoiceNameSkip]))
				}
			}
		}

		if out.AmountText == "" {
			for _, label := range amountLabels {
				if !strings.Contains(folded, label) {
					continue
				}
				if matches := amountToken.FindAllString(line, -1); len(matches) > 0 {
					// Several figures can share a label line (barcode digits,
					// discounts); the rightmost is the charged amount.
					out.AmountText = matches[len(matches)-1]
				}
				break
			}
		}

		if out.DocumentNumber == "" {
			switch {
			case isInvoice && strings.Contains(folded, "nº") && strings.Contains(folded, "serie"),
				isInvoice && strings.Contains(folded, "no.") && strings.Contains(folded, "serie"):
				if m := invoiceNumber.FindStringSubmatch(line); m != nil {
					out.DocumentNumber = m[1]
				}
			case strings.Contains(folded, "nº do documento"), strings.Contains(folded, "numero do documento"):
				if fields := strings.Fields(trimmed); len(fields) > 1 {
					out.DocumentNumber = fields[len(fields)-1]
				}
			}
		}
	}

	if out.SupplierFragment == "" {
		out.SupplierFragment = e.supplierFromAliasScan(lines)
	}

	if out.AmountText == "" {
		all := amountToken.FindAllString(text, -1)
		if len(all) > 0 {
			out.AmountText = e.policies.AmountFallback(all)
		}
	}
	out.LowConfidence = e.amountAmbiguous(out.AmountText, amountToken.FindAllString(text, -1))

	if out.DocumentNumber == "" && out.IssueDate != "" {
		out.DocumentNumber = numberNearDate(lines, out.IssueDate)
	}

	return out
}

// ExtractReceipt parses a payment receipt (comprovante). Receipts carry no
// structural labels, so the whole text is kept as the supplier fragment for
// downstream fuzzy resolution; the last currency-marked amount and the last
// full date are taken as the charged amount and the payment date.
func (e *Extractor) ExtractReceipt(text string) CandidateFields {
	var out CandidateFields
	if strings.TrimSpace(text) == "" {
		return out
	}

	out.SupplierFragment = strings.TrimSpace(text)

	if matches := receiptAmount.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		out.AmountText = strings.TrimSpace(matches[len(matches)-1][1])
	}

	if dates := normalizer.FindDates(text); len(dates) > 0 {
		last := normalizer.FormatDate(dates[len(dates)-1])
		out.PaymentDate = last
		// Receipts prove settlement: the payment date doubles as the due
		// date for ledger matching.
		out.DueDate = last
	}

	return out
}

// extractDates fills the date fields. Explicitly labeled dates always win;
// the remaining roles fall back to the chronological-order policy.
func (e *Extractor) extractDates(lines []string, text string, out *CandidateFields) {
	for _, line := range lines {
		folded := textfold.Fold(line)
		tok := dateOnLine(line)
		if tok == "" {
			continue
		}
		switch {
		case out.PaymentDate == "" && containsAny(folded, paymentLabels):
			out.PaymentDate = tok
		case out.DueDate == "" && containsAny(folded, dueLabels):
			out.DueDate = tok
		case out.IssueDate == "" && containsAny(folded, issueLabels):
			out.IssueDate = tok
		}
	}

	if out.IssueDate != "" && out.DueDate != "" {
		return
	}
	dates := normalizer.FindDates(text)
	if len(dates) == 0 {
		return
	}
	issue, due := e.policies.DateRole(dates)
	if out.IssueDate == "" {
		out.IssueDate = normalizer.FormatDate(issue)
	}
	if out.DueDate == "" {
		out.DueDate = normalizer.FormatDate(due)
	}
}

// supplierFromAliasScan finds the first line containing a known alias key.
// Short keys are skipped to avoid accidental matches on fragments.
func (e *Extractor) supplierFromAliasScan(lines []string) string {
	own := textfold.Fold(e.cat.OwnName())
	for _, line := range lines {
		folded := textfold.Fold(line)
		if folded == "" {
			continue
		}
		for _, alias := range e.cat.Aliases() {
			key := textfold.Fold(alias.Key)
			if len(key) < minAliasKeyLen || key == own {
				continue
			}
			if strings.Contains(folded, key) {
				return e.acceptSupplier(strings.TrimSpace(line))
			}
		}
	}
	return ""
}

// acceptSupplier rejects a fragment naming the business itself; it is the
// payer on every document, never the payee.
func (e *Extractor) acceptSupplier(fragment string) string {
	own := textfold.Fold(e.cat.OwnName())
	if own != "" && textfold.Fold(fragment) == own {
		if e.logger != nil {
			e.logger.Debug("supplier fragment rejected: matches own legal name", "fragment", fragment)
		}
		return ""
	}
	return fragment
}

// amountAmbiguous reports whether more than two extracted amounts sit within
// the configured spread of the chosen one.
func (e *Extractor) amountAmbiguous(chosen string, all []string) bool {
	if chosen == "" || len(all) < 3 {
		return false
	}
	ref, ok := normalizer.ParseBRL(chosen)
	if !ok || ref.IsZero() {
		return false
	}
	spread := decimal.NewFromFloat(e.policies.AmbiguitySpread)
	near := 0
	seen := make(map[string]bool)
	for _, raw := range all {
		if seen[raw] {
			continue
		}
		seen[raw] = true
		v, ok := normalizer.ParseBRL(raw)
		if !ok {
			continue
		}
		diff := v.Sub(ref).Abs()
		if diff.LessThanOrEqual(ref.Mul(spread)) {
			near++
		}
	}
	return near > 2
}

// largestAmount is the default amount fallback: the biggest figure on the
// document is assumed to be the principal.
func largestAmount(candidates []string) string {
	best := ""
	var bestVal decimal.Decimal
	for _, raw := range candidates {
		v, ok := normalizer.ParseBRL(raw)
		if !ok {
			continue
		}
		if best == "" || v.GreaterThan(bestVal) {
			best = raw
			bestVal = v
		}
	}
	return best
}

// afterColonOrNextLine returns the text after a label colon, or the
// following line when the label line carries nothing after the colon.
func afterColonOrNextLine(line string, lines []string, i int) string {
	if _, rest, found := strings.Cut(line, ":"); found && strings.TrimSpace(rest) != "" {
		return strings.TrimSpace(rest)
	}
	if i+1 < len(lines) {
		return strings.TrimSpace(lines[i+1])
	}
	return ""
}

// dateOnLine returns the first full date token on a line.
func dateOnLine(line string) string {
	for _, tok := range normalizer.FindDates(line) {
		return normalizer.FormatDate(tok)
	}
	return ""
}

var dateSubstring = regexp.MustCompile(`\d{2}/\d{2}/\d{2,4}`)

// numberNearDate looks for a standalone number on the line holding the issue
// date, with date substrings removed first so their fragments are not read
// back as a document number.
func numberNearDate(lines []string, issueDate string) string {
	for _, line := range lines {
		if !strings.Contains(line, issueDate) {
			continue
		}
		stripped := dateSubstring.ReplaceAllString(line, " ")
		for _, field := range strings.Fields(stripped) {
			if isDigits(field) {
				return field
			}
		}
		return ""
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func containsAny(folded string, labels []string) bool {
	for _, l := range labels {
		if strings.Contains(folded, l) {
			return true
		}
	}
	return false
}
