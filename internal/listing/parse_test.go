package listing

import (
	"testing"
)

func intPtr(v int) *int          { return &v }
func strPtr(v string) *string    { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  *float64
	}{
		{"float", 42.5, floatPtr(42.5)},
		{"int", 80, floatPtr(80)},
		{"plain string", "75", floatPtr(75)},
		{"string with unit", "75 m²", floatPtr(75)},
		{"digits after text", "circa 120 mq", floatPtr(120)},
		{"no digits", "ampio", nil},
		{"empty string", "", nil},
		{"nil", nil, nil},
		{"unsupported type", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseNumber(tt.value)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("ParseNumber(%v) = %v; want %v", tt.value, got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("ParseNumber(%v) = %v; want %v", tt.value, *got, *tt.want)
			}
		})
	}
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Count
	}{
		{"bare int string", "3", Count{Value: intPtr(3), Raw: nil}},
		{"plus suffix", "5+", Count{Value: intPtr(5), Raw: strPtr("5+")}},
		{"value with text", "5 locali", Count{Value: intPtr(5), Raw: strPtr("5 locali")}},
		{"text only", "locali", Count{Value: nil, Raw: strPtr("locali")}},
		{"number", 4, Count{Value: intPtr(4), Raw: nil}},
		{"float truncates", 2.0, Count{Value: intPtr(2), Raw: nil}},
		{"empty string", "", Count{}},
		{"nil", nil, Count{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCount(tt.value)
			assertCount(t, got, tt.want)
		})
	}
}

func TestParseFloor(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  Count
	}{
		{"positive", "3", Count{Value: intPtr(3), Raw: nil}},
		{"negative", "-1", Count{Value: intPtr(-1), Raw: nil}},
		{"ground floor letter", "T", Count{Value: nil, Raw: strPtr("T")}},
		{"raised floor letter", "R", Count{Value: nil, Raw: strPtr("R")}},
		{"number", 2, Count{Value: intPtr(2), Raw: nil}},
		{"mixed text stays raw", "piano 3", Count{Value: nil, Raw: strPtr("piano 3")}},
		{"nil", nil, Count{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFloor(tt.value)
			assertCount(t, got, tt.want)
		})
	}
}

func assertCount(t *testing.T, got Count, want Count) {
	t.Helper()

	if (got.Value == nil) != (want.Value == nil) {
		t.Fatalf("Value = %v; want %v", got.Value, want.Value)
	}
	if got.Value != nil && *got.Value != *want.Value {
		t.Errorf("Value = %d; want %d", *got.Value, *want.Value)
	}
	if (got.Raw == nil) != (want.Raw == nil) {
		t.Fatalf("Raw = %v; want %v", got.Raw, want.Raw)
	}
	if got.Raw != nil && *got.Raw != *want.Raw {
		t.Errorf("Raw = %q; want %q", *got.Raw, *want.Raw)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Balcone ", "cantina", "BALCONE", ""})
	want := []string{"balcone", "cantina"}

	if len(got) != len(want) {
		t.Fatalf("NormalizeTags = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NormalizeTags[%d] = %q; want %q", i, got[i], want[i])
		}
	}

	if NormalizeTags(nil) != nil {
		t.Error("NormalizeTags(nil) should be nil")
	}
}

func TestTagsContainAny(t *testing.T) {
	tags := []string{"posto auto coperto", "aria condizionata"}

	if !TagsContainAny(tags, []string{"posto auto", "garage"}) {
		t.Error("expected substring match on posto auto")
	}
	if TagsContainAny(tags, []string{"cantina"}) {
		t.Error("did not expect a cantina match")
	}
	if TagsContainAny(nil, []string{"balcone"}) {
		t.Error("nil tags must never match")
	}
}
