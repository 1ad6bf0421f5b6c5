package builder

import "testing"

func TestCol(t *testing.T) {
	tests := []struct {
		goFieldName string
		expectedCol string
	}{
		{"CategoryID", "category_id"},
		{"BasePrice", "base_price"},
		{"ID", "id"},
		{"NonExistent", "NonExistent"},
	}

	for _, tt := range tests {
		t.Run(tt.goFieldName, func(t *testing.T) {
			if got := Col[testProduct](tt.goFieldName); got != tt.expectedCol {
				t.Errorf("Col[testProduct](%q) = %q, want %q", tt.goFieldName, got, tt.expectedCol)
			}
		})
	}
}
