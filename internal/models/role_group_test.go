package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringListScan(t *testing.T) {
	cases := []struct {
		name string
		src  interface{}
		want StringList
	}{
		{"json array", []byte(`["EE*","XEN"]`), StringList{"EE*", "XEN"}},
		{"json array from string", `["CLRK"]`, StringList{"CLRK"}},
		{"quoted bare string", []byte(`"DIRECTOR"`), StringList{"DIRECTOR"}},
		{"raw bare string", []byte(`DIRECTOR`), StringList{"DIRECTOR"}},
		{"empty array", []byte(`[]`), StringList{}},
		{"empty payload", []byte(``), nil},
		{"nil", nil, nil},
		{"whitespace only", []byte("  "), nil},
		{"empty quoted string", []byte(`""`), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var list StringList
			require.NoError(t, list.Scan(tc.src))
			assert.Equal(t, tc.want, list)
		})
	}
}

func TestStringListScanRejectsUnknownType(t *testing.T) {
	var list StringList
	assert.Error(t, list.Scan(42))
}

func TestStringListValue(t *testing.T) {
	value, err := StringList{"EE*", "XEN"}.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `["EE*","XEN"]`, string(value.([]byte)))

	empty, err := StringList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", string(empty.([]byte)))
}
