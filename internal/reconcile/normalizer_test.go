package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "plain description unchanged",
			input: "Office Rent",
			want:  "Office Rent",
		},
		{
			name:  "strips slash date",
			input: "Netflix Subscription 01/03/2024",
			want:  "Netflix Subscription",
		},
		{
			name:  "strips dash date",
			input: "Netflix Subscription 01-03-2024",
			want:  "Netflix Subscription",
		},
		{
			name:  "strips rate annotation",
			input: "FX Purchase (rate: 32.45)",
			want:  "FX Purchase",
		},
		{
			name:  "rate annotation is case insensitive",
			input: "FX Purchase (RATE: 32.45)",
			want:  "FX Purchase",
		},
		{
			name:  "strips trailing month phrase",
			input: "Salary payment for March 2024",
			want:  "Salary payment",
		},
		{
			name:  "strips abbreviated month phrase",
			input: "Salary payment for Mar 2024",
			want:  "Salary payment",
		},
		{
			name:  "month phrase mid-string is kept",
			input: "Reserved for March 2024 deposit",
			want:  "Reserved for March 2024 deposit",
		},
		{
			name:  "combined volatile tokens",
			input: "Netflix Subscription 01/03/2024 (rate: 1.05) for Mar 2024",
			want:  "Netflix Subscription",
		},
		{
			name:  "collapses interior whitespace",
			input: "  AWS   Cloud    Services  ",
			want:  "AWS Cloud Services",
		},
		{
			name:  "date embedded mid-string",
			input: "Invoice 15/01/2024 consulting fee",
			want:  "Invoice consulting fee",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Netflix Subscription 01/03/2024 (rate: 1.05) for Mar 2024",
		"Salary payment for March 2024",
		"  spaced   out  ",
		"plain text",
		"Invoice 15-01-2024 (rate: 0.87)",
	}

	for _, input := range inputs {
		once := Normalize(input)
		assert.Equal(t, once, Normalize(once), "input %q", input)
	}
}
