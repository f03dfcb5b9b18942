package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"grain-auction/internal/auctionerrors"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	c := Default()
	require.Len(t, c.List(), 9)

	wheat, err := c.Lookup("1")
	require.NoError(t, err)
	snap, err := wheat.Snapshot()
	require.NoError(t, err)
	require.Equal(t, "Wheat", snap.GrainType)
	require.Equal(t, 1, snap.Category)
	require.True(t, snap.Moisture.Equal(decimal.RequireFromString("12")))
	require.NotNil(t, snap.Gluten)
	require.True(t, snap.Gluten.Equal(decimal.RequireFromString("28")))
	require.True(t, snap.TestWeight.Equal(decimal.RequireFromString("780")))

	corn, err := c.Lookup("5")
	require.NoError(t, err)
	snap, err = corn.Snapshot()
	require.NoError(t, err)
	require.Nil(t, snap.Gluten)
	require.True(t, snap.Protein.Equal(decimal.RequireFromString("8.5")))

	_, err = c.Lookup("42")
	require.ErrorIs(t, err, auctionerrors.ErrGrainNotFound)
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	g := Grain{ID: "x", NameEN: "Wheat", Category: 2, Moisture: "14%", Protein: "12%", Gluten: "25%", Active: true}
	snap, err := g.Snapshot()
	require.NoError(t, err)

	// later catalog edits do not reach an existing snapshot
	g.Moisture = "20%"
	require.True(t, snap.Moisture.Equal(decimal.RequireFromString("14")))

	clone := snap.Clone()
	*clone.Gluten = decimal.RequireFromString("1")
	require.True(t, snap.Gluten.Equal(decimal.RequireFromString("25")))
}

func TestParseMeasure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw     string
		want    string
		wantNil bool
		wantErr bool
	}{
		{raw: "12%", want: "12"},
		{raw: "8.5%", want: "8.5"},
		{raw: "8,5 %", want: "8.5"},
		{raw: "780 г/л", want: "780"},
		{raw: "N/A", wantNil: true},
		{raw: "", wantNil: true},
		{raw: "-", wantNil: true},
		{raw: "high", wantErr: true},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.raw, func(t *testing.T) {
			t.Parallel()
			got, err := parseMeasure(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tc.wantNil {
				require.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			require.Equal(t, tc.want, got.String())
		})
	}
}

func TestNewStatic_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewStatic(Grain{ID: "", NameEN: "Wheat", Category: 1, Moisture: "1", Protein: "1"})
	require.Error(t, err)

	_, err = NewStatic(
		Grain{ID: "1", Category: 1, Moisture: "1", Protein: "1"},
		Grain{ID: "1", Category: 1, Moisture: "1", Protein: "1"},
	)
	require.Error(t, err)

	_, err = NewStatic(Grain{ID: "1", Category: 4, Moisture: "1", Protein: "1"})
	require.Error(t, err)

	_, err = NewStatic(Grain{ID: "1", Category: 1, Moisture: "N/A", Protein: "1"})
	require.Error(t, err)
}

func TestParseYAML_InactiveHidden(t *testing.T) {
	t.Parallel()

	c, err := ParseYAML([]byte(`
grains:
  - id: "10"
    name_en: Soybean
    name_ua: Соя
    category: 1
    moisture: 12%
    protein: 35%
    gluten: N/A
    test_weight: N/A
    active: true
  - id: "11"
    name_en: Rye
    category: 2
    moisture: 14%
    protein: 9%
    active: false
`))
	require.NoError(t, err)
	require.Len(t, c.List(), 1)

	_, err = c.Lookup("11")
	require.ErrorIs(t, err, auctionerrors.ErrGrainNotFound)

	soy, err := c.Lookup("10")
	require.NoError(t, err)
	require.Equal(t, "Соя", soy.NameUA)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "grains.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grains:\n  - id: a\n    category: 1\n    moisture: 10%\n    protein: 10%\n    active: true\n"), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, c.List(), 1)

	_, err = LoadFile(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)

	require.NoError(t, os.WriteFile(path, nil, 0o600))
	_, err = LoadFile(path)
	require.Error(t, err)
}
