package grade

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Numeric(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantLetter  string
		wantNumeric float64
	}{
		{name: "top of range", raw: "100", wantLetter: "A+", wantNumeric: 100},
		{name: "exact A+ boundary", raw: "90", wantLetter: "A+", wantNumeric: 90},
		{name: "just below A+", raw: "89.99", wantLetter: "A", wantNumeric: 89.99},
		{name: "A boundary", raw: "85", wantLetter: "A", wantNumeric: 85},
		{name: "A- boundary", raw: "80", wantLetter: "A-", wantNumeric: 80},
		{name: "B+ boundary", raw: "77", wantLetter: "B+", wantNumeric: 77},
		{name: "B boundary", raw: "73", wantLetter: "B", wantNumeric: 73},
		{name: "B- boundary", raw: "70", wantLetter: "B-", wantNumeric: 70},
		{name: "C+ boundary", raw: "67", wantLetter: "C+", wantNumeric: 67},
		{name: "C boundary", raw: "63", wantLetter: "C", wantNumeric: 63},
		{name: "C- boundary", raw: "60", wantLetter: "C-", wantNumeric: 60},
		{name: "D+ boundary", raw: "57", wantLetter: "D+", wantNumeric: 57},
		{name: "D boundary", raw: "53", wantLetter: "D", wantNumeric: 53},
		{name: "D- boundary", raw: "50", wantLetter: "D-", wantNumeric: 50},
		{name: "failing", raw: "49.5", wantLetter: "F", wantNumeric: 49.5},
		{name: "zero", raw: "0", wantLetter: "F", wantNumeric: 0},
		{name: "negative kept", raw: "-5", wantLetter: "F", wantNumeric: -5},
		{name: "whitespace trimmed", raw: "  88 ", wantLetter: "A", wantNumeric: 88},
		{name: "above 100 clamped", raw: "105", wantLetter: "A+", wantNumeric: 100},
		{name: "far above 100 clamped", raw: "1000", wantLetter: "A+", wantNumeric: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.raw)
			require.True(t, ok)
			assert.Equal(t, tt.wantLetter, got.Letter)
			assert.InDelta(t, tt.wantNumeric, got.Numeric, 1e-9)
			assert.True(t, got.FromNumeric)
		})
	}
}

func TestNormalize_NumericIdentityUpTo100(t *testing.T) {
	for v := 0; v <= 100; v++ {
		for _, frac := range []float64{0, 0.25, 0.5} {
			value := float64(v) + frac
			if value > 100 {
				continue
			}
			got, ok := Normalize(strconv.FormatFloat(value, 'f', -1, 64))
			require.True(t, ok)
			assert.InDelta(t, value, got.Numeric, 1e-9, "value %v", value)
		}
	}
}

func TestNormalize_Letters(t *testing.T) {
	scale := DefaultScale()
	for _, letter := range Letters {
		for _, raw := range []string{letter, strings.ToLower(letter)} {
			t.Run(raw, func(t *testing.T) {
				got, ok := scale.Normalize(raw)
				require.True(t, ok)
				assert.Equal(t, letter, got.Letter)
				assert.Equal(t, scale.Midpoints[letter], got.Numeric)
				assert.False(t, got.FromNumeric)
			})
		}
	}
}

func TestNormalize_LetterMidpoints(t *testing.T) {
	want := map[string]float64{
		"A+": 95, "A": 87.5, "A-": 82.5, "B+": 77.5, "B": 75, "B-": 72.5,
		"C+": 67.5, "C": 65, "C-": 62.5, "D+": 57.5, "D": 55, "D-": 52.5, "F": 45,
	}
	for letter, mid := range want {
		got, ok := Normalize(letter)
		require.True(t, ok, letter)
		assert.Equal(t, mid, got.Numeric, letter)
	}
}

func TestNormalize_Unresolvable(t *testing.T) {
	for _, raw := range []string{"", "   ", "N/A", "Error", "Decryption Error", "E", "A++", "pass", "NaN", "Inf", "-Inf", "CR", "W", "0x1p6", "0X1P6", "-0x1p2", "0x40"} {
		t.Run(raw, func(t *testing.T) {
			_, ok := Normalize(raw)
			assert.False(t, ok)
		})
	}
}

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{raw: "95", want: 95, ok: true},
		{raw: " 72.5 ", want: 72.5, ok: true},
		{raw: "+80", want: 80, ok: true},
		{raw: "1e2", want: 100, ok: true},
		{raw: "0", want: 0, ok: true},
		{raw: "0x1p6"},
		{raw: "+0x1p6"},
		{raw: "0X10"},
		{raw: "NaN"},
		{raw: "A"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := ParseNumeric(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestScale_LetterForCustomBreakpoints(t *testing.T) {
	scale := DefaultScale().WithOverrides([]Breakpoint{
		{Letter: "a", Min: 80},
		{Letter: "b", Min: 70},
	}, nil, nil)

	assert.Equal(t, "A", scale.LetterFor(95))
	assert.Equal(t, "B", scale.LetterFor(70))
	assert.Equal(t, "F", scale.LetterFor(69.9))
}

func TestScale_Validate(t *testing.T) {
	require.NoError(t, DefaultScale().Validate())

	tests := []struct {
		mutate func(*Scale)
		name   string
	}{
		{name: "no breakpoints", mutate: func(s *Scale) { s.Breakpoints = nil }},
		{name: "missing floor", mutate: func(s *Scale) { s.Floor = "" }},
		{name: "floor without points", mutate: func(s *Scale) { s.Floor = "Z" }},
		{name: "unordered breakpoints", mutate: func(s *Scale) {
			s.Breakpoints = []Breakpoint{{Letter: "B", Min: 70}, {Letter: "A", Min: 80}}
		}},
		{name: "letter without points", mutate: func(s *Scale) {
			s.Breakpoints = []Breakpoint{{Letter: "Q", Min: 70}}
		}},
		{name: "points out of range", mutate: func(s *Scale) { s.Points["A+"] = 4.3 }},
		{name: "missing midpoint", mutate: func(s *Scale) { delete(s.Midpoints, "B") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultScale()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalidScale)
		})
	}
}

