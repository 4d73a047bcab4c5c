package resolver

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doppio-labs/fiscaldoc/internal/domain/catalog"
)

func testResolver(t *testing.T, opts ...Option) *Resolver {
	t.Helper()
	cat := catalog.New([]catalog.Alias{
		{Key: "cadeg", Canonical: "MELHOR COMPRA DA CADEG"},
		{Key: "cafez", Canonical: "CAFEZ COMERCIO VAREJISTA DE CAFÉ"},
		{Key: "cafez varejista", Canonical: "CAFEZ COMERCIO VAREJISTA DE CAFÉ"},
		{Key: "illy", Canonical: "ILLY"},
		{Key: "oggi", Canonical: "OGGI"},
		{Key: "peruchi", Canonical: "OGGI"},
	}, nil)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(cat, logger, opts...)
}

func TestResolveAlias(t *testing.T) {
	r := testResolver(t)

	res, ok := r.ResolveAlias("cafez varejista")
	require.True(t, ok)
	assert.Equal(t, "CAFEZ COMERCIO VAREJISTA DE CAFÉ", res.Canonical)
	assert.Equal(t, 100, res.Confidence)

	// Insertion order breaks ties: "peruchi" maps through the first alias
	// that appears in the fragment.
	res, ok = r.ResolveAlias("pagamento PERUCHI sorvetes")
	require.True(t, ok)
	assert.Equal(t, "OGGI", res.Canonical)

	_, ok = r.ResolveAlias("fornecedor desconhecido")
	assert.False(t, ok)

	_, ok = r.ResolveAlias("   ")
	assert.False(t, ok)
}

func TestResolveAliasShortKeyRequiresExactFragment(t *testing.T) {
	cat := catalog.New([]catalog.Alias{
		{Key: "gt", Canonical: "GUSTAVO TREMONTI"},
		{Key: "illy", Canonical: "ILLY"},
	}, nil)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	r := New(cat, logger)

	// "gt" sits inside "pgto". A two-letter key must not capture the whole
	// receipt text; the longer alias further down still matches by containment.
	res, ok := r.ResolveAlias("pgto illy\nR$ 50,00\n10/04/2025")
	require.True(t, ok)
	assert.Equal(t, "ILLY", res.Canonical)
	assert.Equal(t, "illy", res.MatchedOn)

	// A fragment that is exactly the short key still resolves through it.
	res, ok = r.ResolveAlias("GT")
	require.True(t, ok)
	assert.Equal(t, "GUSTAVO TREMONTI", res.Canonical)
}

func TestResolveOCRSkipsShortAliasKeys(t *testing.T) {
	cat := catalog.New([]catalog.Alias{
		{Key: "gt", Canonical: "GUSTAVO TREMONTI"},
		{Key: "illy", Canonical: "ILLY"},
	}, nil)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	r := New(cat, logger)

	res, ok := r.ResolveOCR("comprovante de pgto pix\nrecebedor: illy cafe comercio\nvalor r$ 50,00")
	require.True(t, ok)
	assert.Equal(t, "ILLY", res.Canonical)
}

func TestResolveFormExactName(t *testing.T) {
	r := testResolver(t)

	res, ok := r.ResolveForm("cafez comercio varejista de café")
	require.True(t, ok)
	assert.Equal(t, "CAFEZ COMERCIO VAREJISTA DE CAFÉ", res.Canonical)
	assert.Equal(t, 100, res.Confidence)
}

func TestResolveFormBelowThreshold(t *testing.T) {
	r := testResolver(t)

	_, ok := r.ResolveForm("zzz qqq totally unrelated xyz")
	assert.False(t, ok, "gibberish must not clear the threshold")
}

func TestResolveFormThresholdOverride(t *testing.T) {
	// With the threshold floored, even a weak best match is accepted.
	r := testResolver(t, WithFormThreshold(1))
	res, ok := r.ResolveForm("cafez")
	require.True(t, ok)
	assert.NotEmpty(t, res.Canonical)
	assert.Positive(t, res.Confidence)
}

func TestResolveFormAcceptsScoreAtThreshold(t *testing.T) {
	// Acceptance is inclusive: a score equal to the threshold clears it.
	r := testResolver(t, WithFormThreshold(100))
	res, ok := r.ResolveForm("cafez comercio varejista de café")
	require.True(t, ok)
	assert.Equal(t, "CAFEZ COMERCIO VAREJISTA DE CAFÉ", res.Canonical)
	assert.Equal(t, 100, res.Confidence)
}

func TestResolveOCR(t *testing.T) {
	r := testResolver(t)

	text := "comprovante de pagamento pix\nrecebedor: illy cafe comercio\nvalor r$ 430,00"
	res, ok := r.ResolveOCR(text)
	require.True(t, ok)
	assert.Equal(t, "ILLY", res.Canonical)
	assert.Equal(t, "illy", res.MatchedOn)
	assert.GreaterOrEqual(t, res.Confidence, DefaultOCRThreshold)
}

func TestResolveOCRBelowThreshold(t *testing.T) {
	r := testResolver(t)
	_, ok := r.ResolveOCR("wwww kkkk transferencia 123456")
	assert.False(t, ok)
}

func TestResolveFallsBackToSentinel(t *testing.T) {
	r := testResolver(t)

	res := r.Resolve("qqq zzz never configured")
	assert.Equal(t, Unresolved, res.Canonical)
	assert.Zero(t, res.Confidence)

	res = r.Resolve("nota cadeg mercado")
	assert.Equal(t, "MELHOR COMPRA DA CADEG", res.Canonical)
}
