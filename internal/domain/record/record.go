package record

import "strings"

// Record is one intervention case after cleaning and extraction.
// It is immutable once loaded; the analysis layer never mutates records.
type Record struct {
	Locality string
	Year     int
	Regime   Regime
	Age      int    // -1 when not present in the source
	Sex      string // empty when not present in the source
}

// Regime is the SGSSS health-affiliation category of a record.
type Regime string

const (
	RegimeContributivo   Regime = "CONTRIBUTIVO"
	RegimeSubsidiado     Regime = "SUBSIDIADO"
	RegimeOtro           Regime = "OTRO"
	RegimeNoEspecificado Regime = "NO_ESPECIFICADO"
)

// AllRegimes lists the regime categories in report order.
func AllRegimes() []Regime {
	return []Regime{RegimeContributivo, RegimeSubsidiado, RegimeOtro, RegimeNoEspecificado}
}

// NormalizeRegime maps a raw affiliation cell to a Regime category.
// Unrecognized non-empty values fall into RegimeOtro (e.g. special/exception
// regimes), empty or null-ish values into RegimeNoEspecificado.
func NormalizeRegime(raw string) Regime {
	v := strings.ToUpper(strings.TrimSpace(raw))
	switch {
	case v == "" || v == "NO ESPECIFICADO" || v == "NO_ESPECIFICADO" || v == "99999":
		return RegimeNoEspecificado
	case strings.Contains(v, "CONTRIBUTIVO"):
		return RegimeContributivo
	case strings.Contains(v, "SUBSID"):
		return RegimeSubsidiado
	default:
		return RegimeOtro
	}
}

// Localities is the fixed set of administrative localities of Bogotá.
var Localities = []string{
	"USAQUEN",
	"CHAPINERO",
	"SANTA FE",
	"SAN CRISTOBAL",
	"USME",
	"TUNJUELITO",
	"BOSA",
	"KENNEDY",
	"FONTIBON",
	"ENGATIVA",
	"SUBA",
	"BARRIOS UNIDOS",
	"TEUSAQUILLO",
	"LOS MARTIRES",
	"ANTONIO NARIÑO",
	"PUENTE ARANDA",
	"LA CANDELARIA",
	"RAFAEL URIBE URIBE",
	"CIUDAD BOLIVAR",
	"SUMAPAZ",
}

var localitySet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(Localities))
	for _, l := range Localities {
		set[normalizeLocalityKey(l)] = struct{}{}
	}
	return set
}()

// KnownLocality reports whether name matches one of the fixed localities,
// ignoring case, surrounding whitespace and accents on Ñ/accented vowels.
func KnownLocality(name string) bool {
	_, ok := localitySet[normalizeLocalityKey(name)]
	return ok
}

// CanonicalLocality returns the canonical spelling for a known locality and
// true, or the trimmed upper-cased input and false when unknown.
func CanonicalLocality(name string) (string, bool) {
	key := normalizeLocalityKey(name)
	for _, l := range Localities {
		if normalizeLocalityKey(l) == key {
			return l, true
		}
	}
	return strings.ToUpper(strings.TrimSpace(name)), false
}

var accentReplacer = strings.NewReplacer(
	"Á", "A", "É", "E", "Í", "I", "Ó", "O", "Ú", "U", "Ü", "U",
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
)

func normalizeLocalityKey(name string) string {
	v := strings.ToUpper(strings.TrimSpace(name))
	v = accentReplacer.Replace(v)
	// Folding Ñ lets "ANTONIO NARINO" in the raw data match the canonical name.
	v = strings.ReplaceAll(v, "Ñ", "N")
	v = strings.ReplaceAll(v, "ñ", "N")
	return strings.Join(strings.Fields(v), " ")
}
