package value

import "testing"

func TestValueImmutability(t *testing.T) {
	original := NewNumber(8, "hrs", "measured after rollout")
	updated := original.WithValue(10)

	if original.Value != 8 {
		t.Errorf("WithValue() mutated the original, got %v", original.Value)
	}
	if updated.Value != 10 || updated.Unit != "hrs" || updated.Rationale != original.Rationale {
		t.Errorf("WithValue() = %+v, expected value 10 with original unit and rationale", updated)
	}

	relabelled := original.WithRationale("vendor quote")
	if relabelled.Equal(original) {
		t.Error("Equal() should be false when rationales differ")
	}
	if !original.Equal(NewNumber(8, "hrs", "measured after rollout")) {
		t.Error("Equal() should be true for identical triples")
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		value    Number
		expected string
	}{
		{"Currency", NewNumber(49.9, "EUR", "list price"), "€49.90"},
		{"Percentage", NewNumber(8, "%", "target share"), "8.0%"},
		{"Units", NewNumber(1500, "units", "pilot"), "1,500.00 units"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.value.String(); result != tt.expected {
				t.Errorf("String() = %q, expected %q", result, tt.expected)
			}
		})
	}

	label := Value[string]{Value: "annual", Rationale: "billing cycle"}
	if label.String() != "annual" {
		t.Errorf("String() for string value = %q, expected annual", label.String())
	}
}

func TestIsPlaceholder(t *testing.T) {
	tests := []struct {
		text     string
		expected bool
	}{
		{"TODO", true},
		{"tbd - ask finance", true},
		{"Enter rationale here", true},
		{"Lorem ipsum dolor", true},
		{"n/a", true},
		{"Based on 2024 pilot with 3 customers", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if result := IsPlaceholder(tt.text); result != tt.expected {
				t.Errorf("IsPlaceholder(%q) = %v, expected %v", tt.text, result, tt.expected)
			}
		})
	}

	if NewNumber(1, "", "").IsPlaceholderRationale() {
		t.Error("empty rationale is missing, not a placeholder")
	}
	if NewNumber(1, "", " ").HasRationale() {
		t.Error("HasRationale() should be false for blank rationale")
	}
}
