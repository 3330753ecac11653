package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodRoundTrip(t *testing.T) {
	ranges := []DateRange{
		{Start: "2024-01-02", End: "2024-03-04"},
		{Start: "2023-12-31", End: "2023-12-31"},
		{Start: "2020-02-29"},
		{Start: "1999-07-01", End: "2025-01-15"},
	}
	for _, r := range ranges {
		t.Run(EncodePeriod(r), func(t *testing.T) {
			require.True(t, r.Valid())
			got, ok := DecodePeriod(EncodePeriod(r))
			require.True(t, ok)
			assert.Equal(t, r, got)
		})
	}
}

func TestDecodePeriod(t *testing.T) {
	tests := []struct {
		in   string
		want DateRange
		ok   bool
	}{
		{"2024-01-02 ~ 2024-03-04", DateRange{"2024-01-02", "2024-03-04"}, true},
		{"2024 년 01 월 02 일 ~ 2024 년 03 월 04 일", DateRange{"2024-01-02", "2024-03-04"}, true},
		{"2024 년 1 월 2 일", DateRange{Start: "2024-01-02"}, true},
		{"2024.1.2~2024.2.3", DateRange{"2024-01-02", "2024-02-03"}, true},
		{"2024 년", DateRange{}, false},
		{"2024 년 01 월 02 일 ~ 2024 년", DateRange{}, false},
		{"2024-13-40", DateRange{}, false},
		{"2024-05-01 ~ 2024-01-01", DateRange{}, false},
		{"2024 년 05 월 01 일 ~ 2024 년 01 월 01 일", DateRange{}, false},
		{"2024-05-01 ~ 2024-05-01", DateRange{"2024-05-01", "2024-05-01"}, true},
		{"", DateRange{}, false},
		{"최근", DateRange{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := DecodePeriod(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDateRangeValid(t *testing.T) {
	assert.True(t, DateRange{Start: "2024-01-02", End: "2024-01-02"}.Valid())
	assert.True(t, DateRange{Start: "2024-01-02"}.Valid())
	assert.False(t, DateRange{Start: "2024-03-04", End: "2024-01-02"}.Valid())
	assert.False(t, DateRange{End: "2024-01-02"}.Valid())
	assert.False(t, DateRange{Start: "2024-1-2"}.Valid())
}

func TestPartsRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		parts PeriodParts
		enc   string
	}{
		{"full", PeriodParts{"2024", "01", "02", "2024", "03", "04"}, "2024 년 01 월 02 일 ~ 2024 년 03 월 04 일"},
		{"year only", PeriodParts{"2024", "", "", "", "", ""}, "2024 년"},
		{"year and day", PeriodParts{"2024", "", "07", "", "", ""}, "2024 년 07 일"},
		{"open end", PeriodParts{"2023", "11", "30", "", "", ""}, "2023 년 11 월 30 일"},
		{"end year only", PeriodParts{"2023", "11", "30", "2024", "", ""}, "2023 년 11 월 30 일 ~ 2024 년"},
		{"end only", PeriodParts{"", "", "", "2024", "02", ""}, "~ 2024 년 02 월"},
		{"empty", PeriodParts{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc := AssembleParts(tt.parts)
			assert.Equal(t, tt.enc, enc)
			assert.Equal(t, tt.parts, ParseParts(enc))
		})
	}
}

func TestPartsWith(t *testing.T) {
	p := PeriodParts{}.With(StartYear, "20a24x9").With(StartMonth, "123")
	assert.Equal(t, "2024", p[StartYear])
	assert.Equal(t, "12", p[StartMonth])

	// short values are padded when encoded
	assert.Equal(t, "0020 년 05 월", AssembleParts(PeriodParts{}.With(StartYear, "20").With(StartMonth, "5")))
}

func TestParseSegment(t *testing.T) {
	seg, err := ParseSegment("end-day")
	require.NoError(t, err)
	assert.Equal(t, EndDay, seg)

	seg, err = ParseSegment("sM")
	require.NoError(t, err)
	assert.Equal(t, StartMonth, seg)

	_, err = ParseSegment("week")
	assert.ErrorIs(t, err, ErrUnknownOption)
}
