package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPatternFilterFlags(t *testing.T) {
	filter := NewPatternFilter(testRuleSet())

	tests := []struct {
		name    string
		subject string
		body    string
		want    FilterFlags
	}{
		{
			name: "empty text sets nothing",
		},
		{
			name:    "urgency in subject",
			subject: "URGENT: please respond",
			want:    FilterFlags{UrgencyMarker: true},
		},
		{
			name: "financial change in body",
			body: "please update the bank details on file",
			want: FilterFlags{FinancialChangeRequest: true},
		},
		{
			name: "legal term",
			body: "the NDA has been attached",
			want: FilterFlags{LegalTerm: true},
		},
		{
			name:    "acquisition term",
			subject: "Merger discussion",
			want:    FilterFlags{AcquisitionTerm: true},
		},
		{
			name:    "multiple flags at once",
			subject: "Urgent acquisition matter",
			body:    "wire transfer before the contract is signed",
			want: FilterFlags{
				UrgencyMarker:          true,
				FinancialChangeRequest: true,
				LegalTerm:              true,
				AcquisitionTerm:        true,
			},
		},
		{
			name: "matching is case-insensitive",
			body: "WiRe TrAnSfEr",
			want: FilterFlags{FinancialChangeRequest: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filter.Flags(tt.subject, tt.body))
		})
	}
}

func TestPatternFilterDeterministic(t *testing.T) {
	filter := NewPatternFilter(testRuleSet())

	first := filter.Flags("Urgent NDA", "wire transfer")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, filter.Flags("Urgent NDA", "wire transfer"))
	}
}

func TestFilterFlagsNamed(t *testing.T) {
	flags := FilterFlags{UrgencyMarker: true, LegalTerm: true}

	for _, name := range FlagNames {
		_, ok := flags.Named(name)
		assert.True(t, ok, "flag %s should be known", name)
	}

	set, ok := flags.Named(FlagUrgencyMarker)
	assert.True(t, ok)
	assert.True(t, set)

	set, ok = flags.Named(FlagAcquisitionTerm)
	assert.True(t, ok)
	assert.False(t, set)

	_, ok = flags.Named("bogus")
	assert.False(t, ok)
}
