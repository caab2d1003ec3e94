package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomerIDFromFilename(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"standard", "naloga-lokacija-ABC123.csv", "ABC123"},
		{"upper extension", "naloga-lokacija-ABC123.CSV", "ABC123"},
		{"no extension", "naloga-lokacija-XYZ", "XYZ"},
		{"more separators", "a-b-c-D42.csv", "D42"},
		{"directory ignored", "/tmp/uploads/naloga-lokacija-ABC123.csv", "ABC123"},
		{"windows path", `C:\exports\naloga-lokacija-ABC123.csv`, "ABC123"},
		{"spaces", "naloga-lokacija- ABC123 .csv", "ABC123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CustomerIDFromFilename(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCustomerIDFromFilenameRejects(t *testing.T) {
	for _, in := range []string{"ABC123.csv", "naloga-ABC123.csv", "naloga-lokacija-.csv", "naloga-lokacija-  .csv", ""} {
		_, err := CustomerIDFromFilename(in)
		assert.ErrorIs(t, err, ErrInvalidFilename, in)
	}
}
