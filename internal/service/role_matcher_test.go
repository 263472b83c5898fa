package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchRole(t *testing.T) {
	cases := []struct {
		name     string
		roleCode string
		patterns []string
		want     bool
	}{
		{"exact match", "DIRECTOR", []string{"DIRECTOR"}, true},
		{"exact mismatch", "DIRECTOR", []string{"DEPUTY-DIRECTOR"}, false},
		{"wildcard prefix match", "EEXEN", []string{"EE*"}, true},
		{"wildcard requires prefix", "XEE", []string{"EE*"}, false},
		{"short code substring match", "SEEXEN", []string{"EE"}, true},
		{"short code substring mismatch", "XX", []string{"EE"}, false},
		{"boundary length still substring", "XCLERKX", []string{"CLER"}, true},
		{"five chars is exact only", "XCLERKX", []string{"CLERK"}, false},
		{"case insensitive", "eexen", []string{"EE*"}, true},
		{"case insensitive pattern", "EEXEN", []string{"ee*"}, true},
		{"any pattern suffices", "DIRECTOR", []string{"CLERK", "DIRECTOR"}, true},
		{"empty role code never matches", "", []string{"EE*", "DIRECTOR"}, false},
		{"empty pattern skipped", "DIRECTOR", []string{"", "DIRECTOR"}, true},
		{"no patterns", "DIRECTOR", nil, false},
		{"whitespace trimmed", " eexen ", []string{" EE* "}, true},
		{"bare star matches everything", "ANYROLE", []string{"*"}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MatchRole(tc.roleCode, tc.patterns))
		})
	}
}
