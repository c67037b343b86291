package xlsx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/tabulate/model"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		ref     string
		want    Ref
		wantErr bool
	}{
		{"A1", Ref{0, 0}, false},
		{"b1", Ref{1, 0}, false},
		{"Z1", Ref{25, 0}, false},
		{"AA1", Ref{26, 0}, false},
		{"AZ1", Ref{51, 0}, false},
		{"BA1", Ref{52, 0}, false},
		{"C100", Ref{2, 99}, false},
		{"$D$4", Ref{3, 3}, false},
		{"XFD1048576", Ref{16383, 1048575}, false},
		{"", Ref{}, true},
		{"1", Ref{}, true},
		{"A", Ref{}, true},
		{"A0", Ref{}, true},
		{"A-1", Ref{}, true},
		{"A+1", Ref{}, true},
		{"XFE1", Ref{}, true},
		{"A1048577", Ref{}, true},
		{"A1B", Ref{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := ParseRef(tt.ref)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRef)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColumnNames(t *testing.T) {
	tests := []struct {
		index int
		name  string
	}{
		{0, "A"},
		{25, "Z"},
		{26, "AA"},
		{51, "AZ"},
		{701, "ZZ"},
		{702, "AAA"},
		{16383, "XFD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.name, ColumnName(tt.index))
			assert.Equal(t, tt.index, ColumnIndex(tt.name))
		})
	}

	assert.Equal(t, "", ColumnName(-1))
	assert.Equal(t, -1, ColumnIndex(""))
	assert.Equal(t, -1, ColumnIndex("A1"))
	assert.Equal(t, 27, ColumnIndex("ab"))
}

func TestRefString(t *testing.T) {
	assert.Equal(t, "A1", Ref{}.String())
	assert.Equal(t, "AB12", Ref{Col: 27, Row: 11}.String())
	assert.Equal(t, "A1:F3", Range{To: Ref{Col: 5, Row: 2}}.String())

	for _, s := range []string{"A1", "Q17", "ZZ300"} {
		r, err := ParseRef(s)
		require.NoError(t, err)
		assert.Equal(t, s, r.String())
	}
}

func TestSheet(t *testing.T) {
	s := &Sheet{
		Name: "Data",
		Rows: [][]Cell{
			{{Value: "Name", Kind: model.KindString}, {Value: "Qty", Kind: model.KindString}},
			{{Value: "Pen", Kind: model.KindString}, {Value: "3", Kind: model.KindInteger}},
			{{Kind: model.KindEmpty}, {Kind: model.KindEmpty}},
		},
		MaxRow: 2,
		MaxCol: 1,
	}

	assert.Equal(t, 3, s.RowCount())
	assert.Equal(t, 2, s.ColCount())
	assert.Equal(t, "3", s.CellByRef("B2").Value)
	assert.True(t, s.Cell(2, 0).IsEmpty())
	assert.Nil(t, s.Cell(3, 0))
	assert.Nil(t, s.Cell(0, -1))
	assert.Nil(t, s.CellByRef("C1"))
	assert.Nil(t, s.CellByRef("bogus"))

	tbl := s.Table()
	assert.Equal(t, "Data", tbl.Title)
	assert.Equal(t, []string{"Name", "Qty"}, tbl.Header())
	assert.Equal(t, model.Cell{Kind: model.KindInteger, Text: "3"}, tbl.Rows[1][1])
	assert.Len(t, tbl.Rows[2], 2)

	assert.Equal(t, 0, (&Sheet{MaxCol: -1}).ColCount())
}
