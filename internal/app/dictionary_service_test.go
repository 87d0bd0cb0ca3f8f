// internal/app/dictionary_service_test.go
package app

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nna_analyzer/internal/domain/dataset"
)

func TestDictionary_Build(t *testing.T) {
	rows := [][]string{{"CONSTANTE", "CATEGORIA", "IDENTIFICADOR", "CASI_VACIA"}}
	for i := 0; i < 12; i++ {
		category := "A"
		if i%2 == 1 {
			category = "B"
		}
		almostEmpty := ""
		if i == 0 {
			almostEmpty = "unico"
		}
		rows = append(rows, []string{"X", category, fmt.Sprintf("doc-%02d", i), almostEmpty})
	}
	df := frameFromRecords(t, rows)

	svc := NewDictionaryServiceImpl(testLogger())
	entries, err := svc.Build(context.Background(), df)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	byName := make(map[string]dataset.DictionaryEntry, len(entries))
	for _, e := range entries {
		byName[e.Column] = e
	}

	assert.Equal(t, dataset.ColumnConstant, byName["CONSTANTE"].Class)
	assert.Equal(t, dataset.ColumnCategoricalLow, byName["CATEGORIA"].Class)
	assert.Equal(t, dataset.ColumnIdentifier, byName["IDENTIFICADOR"].Class)
	assert.Equal(t, dataset.ColumnAlmostEmpty, byName["CASI_VACIA"].Class)

	assert.Equal(t, 12, byName["CATEGORIA"].NonNull)
	assert.Equal(t, 2, byName["CATEGORIA"].Distinct)
	assert.InDelta(t, 91.67, byName["CASI_VACIA"].NullPercent, 0.01)
}

func TestClassifyColumn_Boundaries(t *testing.T) {
	cases := []struct {
		name    string
		entry   dataset.DictionaryEntry
		numeric bool
		want    string
	}{
		{"ninety percent nulls stays categorical", dataset.DictionaryEntry{NonNull: 10, NullPercent: 90, Distinct: 3}, false, dataset.ColumnCategoricalLow},
		{"above ninety percent nulls", dataset.DictionaryEntry{NonNull: 5, NullPercent: 90.1, Distinct: 3}, false, dataset.ColumnAlmostEmpty},
		{"single value", dataset.DictionaryEntry{NonNull: 100, Distinct: 1}, false, dataset.ColumnConstant},
		{"all distinct over ten", dataset.DictionaryEntry{NonNull: 11, Distinct: 11}, false, dataset.ColumnIdentifier},
		{"ten distinct is low", dataset.DictionaryEntry{NonNull: 100, Distinct: 10}, false, dataset.ColumnCategoricalLow},
		{"fifty distinct is medium", dataset.DictionaryEntry{NonNull: 100, Distinct: 50}, false, dataset.ColumnCategoricalMid},
		{"numeric beyond fifty", dataset.DictionaryEntry{NonNull: 100, Distinct: 60}, true, dataset.ColumnNumeric},
		{"mostly unique text", dataset.DictionaryEntry{NonNull: 100, Distinct: 95}, false, dataset.ColumnHighCardinality},
		{"high cardinality text", dataset.DictionaryEntry{NonNull: 100, Distinct: 60}, false, dataset.ColumnCategoricalHigh},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classifyColumn(tc.entry, tc.numeric))
		})
	}
}

func TestDictionary_ExamplesAreMostFrequent(t *testing.T) {
	rows := [][]string{{"VALOR"}}
	for i := 0; i < 5; i++ {
		rows = append(rows, []string{"frecuente"})
	}
	for i := 0; i < 2; i++ {
		rows = append(rows, []string{"medio"})
	}
	rows = append(rows, []string{"raro"}, []string{"otro"})
	df := frameFromRecords(t, rows)

	svc := NewDictionaryServiceImpl(testLogger())
	entries, err := svc.Build(context.Background(), df)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.Len(t, entries[0].Examples, 3)
	assert.Equal(t, "frecuente", entries[0].Examples[0])
	assert.Equal(t, "medio", entries[0].Examples[1])
}
