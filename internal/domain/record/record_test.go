package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeRegime(t *testing.T) {
	cases := map[string]Regime{
		"CONTRIBUTIVO":         RegimeContributivo,
		"regimen contributivo": RegimeContributivo,
		"SUBSIDIADO":           RegimeSubsidiado,
		"Subsidiado parcial":   RegimeSubsidiado,
		"EXCEPCION":            RegimeOtro,
		"ESPECIAL":             RegimeOtro,
		"99999":                RegimeNoEspecificado,
		"":                     RegimeNoEspecificado,
		"  ":                   RegimeNoEspecificado,
	}
	for raw, want := range cases {
		assert.Equal(t, want, NormalizeRegime(raw), "raw value %q", raw)
	}
}

func TestCanonicalLocality_AccentFolding(t *testing.T) {
	for _, raw := range []string{"ANTONIO NARIÑO", "antonio narino", " Antonio  Nariño "} {
		got, ok := CanonicalLocality(raw)
		assert.True(t, ok, "raw value %q", raw)
		assert.Equal(t, "ANTONIO NARIÑO", got)
	}

	got, ok := CanonicalLocality("engativá")
	assert.True(t, ok)
	assert.Equal(t, "ENGATIVA", got)
}

func TestCanonicalLocality_Unknown(t *testing.T) {
	got, ok := CanonicalLocality(" soacha ")
	assert.False(t, ok)
	assert.Equal(t, "SOACHA", got)
	assert.False(t, KnownLocality("soacha"))
}

func TestLocalities_Complete(t *testing.T) {
	assert.Len(t, Localities, 20)
	for _, l := range Localities {
		assert.True(t, KnownLocality(l))
	}
}
