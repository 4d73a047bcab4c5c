package catalog

import "time"

// defaultAliases is the production alias table. Order is meaningful: the
// substring matcher takes the first alias that appears in a fragment.
var defaultAliases = []Alias{
	{"cadeg", "MELHOR COMPRA DA CADEG"},
	{"rio de janeiro refrescos ltda", "RJ REFRESROS"},
	{"rio de janeiro refrescos", "RJ REFRESROS"},
	{"rio quality", "RIO QUALITY"},
	{"nossos sabores", "NOSSOS SABORES"},
	{"cafez", "CAFEZ COMERCIO VAREJISTA DE CAFÉ"},
	{"cafez varejista", "CAFEZ COMERCIO VAREJISTA DE CAFÉ"},
	{"choconata", "CHOCONATA IND E COM DE ALIMENTOS"},
	{"atelier dos sabores", "ATELIER DOS SABORES"},
	{"atelier", "ATELIER DOS SABORES"},
	{"brigadeiro", "ATELIER DOS SABORES"},
	{"brigadeiro industria", "ATELIER DOS SABORES"},
	{"brasfruto", "BRASFRUTO - AÇAÍ"},
	{"centralrj", "CENTRAL RJ"},
	{"kiko", "CRHISTIAN BECKER"},
	{"pgto kiko", "CRHISTIAN BECKER"},
	{"crhistian becker", "CRHISTIAN BECKER"},
	{"daniel santiago", "DON SANTIAGO"},
	{"don santiago", "DON SANTIAGO"},
	{"gt", "GUSTAVO TREMONTI"},
	{"pgto gt", "GUSTAVO TREMONTI"},
	{"gustavo tremonti", "GUSTAVO TREMONTI"},
	{"illy", "ILLY"},
	{"nobredo", "NOBREDO"},
	{"peruchi sorvetes", "OGGI"},
	{"peruchi", "OGGI"},
	{"oggi", "OGGI"},
	{"quebra nozes", "QUEBRA NOZES IND E COM DE ALIM LTDA"},
	{"audax", "AUDAX CONTABILIDADE (TLKG e DOPPIO BUFFET)"},
	{"cartão", "CARTÃO DE CRÉDITO EMPRESARIAL"},
	{"cartão de crédito", "CARTÃO DE CRÉDITO EMPRESARIAL"},
	{"clube dos sabores", "CLUBE DOS SABORES"},
	{"cmd", "CMD - MENSALIDADE SISTEMA BEMATECH (TOTVS CHEF)"},
	{"cmd automação", "CMD - MENSALIDADE SISTEMA BEMATECH (TOTVS CHEF)"},
	{"outros", "OUTROS"},
	{"di brownie", "DI BROWNIE"},
	{"mj de moraes", "MJ DE MORAES"},
	{"sindrio", "SINDICATO DE BARES E RESTAURANTES DO RJ (SINDRIO)"},
	{"sindicato dos trab", "SINDICATO DE BARES E RESTAURANTES DO RJ (SINDRIO)"},
	{"sigabam", "SINDICATO DOS GARÇONS DO RJ (SIGABAM)"},
	{"sindicato dos garçons", "SINDICATO DOS GARÇONS DO RJ (SIGABAM)"},
	{"tkn rio", "TKN RIO (ALUGUEL MAQ. DE GELO)"},
	{"máquina de gelo", "TKN RIO (ALUGUEL MAQ. DE GELO)"},
	{"tortamania", "TORTAMANIA"},
	{"tudo legal", "TUDO LEGAL"},
	{"internet", "VIVO INTERNET"},
	{"telefonica brasil", "VIVO INTERNET"},
	{"zona zen", "ZONA ZEN"},
	{"encontro são conrrado", "ZONA ZEN"},
	{"fgts doppio", "GFD (FGTS DIGITAL) - DOPPIO BUFFET"},
	{"das doppio", "DAS (Simples) - DOPPIO BUFFET"},
	{"simples doppio", "DAS (Simples) - DOPPIO BUFFET"},
	{"fgts tlkg", "GFD (FGTS DIGITAL) - TLKG"},
	{"dctf doppio", "DCTFWeb DOPPIO BUFFET"},
	{"dctf tlkg", "DCTFWeb TLKG"},
	{"icms tlkg", "ICMS TLKG"},
	{"riopar", "RIOPAR (VT) - boleto"},
	{"vt boleto", "RIOPAR (VT) - boleto"},
	{"aluguel shopping", "CONDOMÍNIO/ALUGUEL BARRASHOPPING"},
	{"aluguel", "CONDOMÍNIO/ALUGUEL BARRASHOPPING"},
	{"parcelamento dctf tlkg", "PARCELAMENTO DCTFWeb TLKG - FEV25 - ATRASADO"},
	{"parcelamento", "PARCELAMENTO DCTFWeb TLKG - FEV25 - ATRASADO"},
	{"funcionarios", "FUNCIONARIOS"},
	{"maran", "MARAN COMERCIO DESCARTAVEIS"},
	{"maran com descart", "MARAN COMERCIO DESCARTAVEIS"},
	{"frozen", "FROZEN BISTRÔ"},
	{"bruno jose fischer", "FROZEN BISTRÔ"},
	{"bruno fischer", "FROZEN BISTRÔ"},
	{"alexandre ferreira", "BIA BOLOS"},
	{"alexandre", "BIA BOLOS"},
	{"bia bolos", "BIA BOLOS"},
	{"retirada socios", "RETIRADA SOCIOS"},
	{"si tecnologia", "SUISSE"},
	{"barra marapendi", "BARRA MARAPENDI"},
	{"marapendi", "BARRA MARAPENDI"},
	{"tlkg com de alimentos ltda", "TLKG COM. DE ALIMENTOS LTDA"},
}

var defaultPeriods = map[time.Month]Destination{
	time.January:   {LedgerTab: "JANEIRO", ArchiveFolder: "01 - Janeiro"},
	time.February:  {LedgerTab: "FEVEREIRO", ArchiveFolder: "02 - Fevereiro"},
	time.March:     {LedgerTab: "MARÇO", ArchiveFolder: "03 - Março"},
	time.April:     {LedgerTab: "ABRIL", ArchiveFolder: "04 - Abril"},
	time.May:       {LedgerTab: "MAIO", ArchiveFolder: "05 - Maio"},
	time.June:      {LedgerTab: "JUNHO", ArchiveFolder: "06 - Junho"},
	time.July:      {LedgerTab: "JULHO", ArchiveFolder: "07 - Julho"},
	time.August:    {LedgerTab: "AGOSTO", ArchiveFolder: "08 - Agosto"},
	time.September: {LedgerTab: "SETEMBRO", ArchiveFolder: "09 - Setembro"},
	time.October:   {LedgerTab: "OUTUBRO", ArchiveFolder: "10 - Outubro"},
	time.November:  {LedgerTab: "NOVEMBRO", ArchiveFolder: "11 - Novembro"},
	time.December:  {LedgerTab: "DEZEMBRO", ArchiveFolder: "12 - Dezembro"},
}

// Default returns the built-in production catalog. Used when no catalog file
// is configured; tests build their own smaller catalogs with New. Options are
// applied after the built-in ones, so callers can override the own name.
func Default(opts ...Option) *Catalog {
	base := []Option{WithOwnName("tlkg com de alimentos ltda")}
	return New(defaultAliases, defaultPeriods, append(base, opts...)...)
}
