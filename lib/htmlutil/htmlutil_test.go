package htmlutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"hello\nworld", "hello world"},
		{"hello\n\t  world", "hello world"},
		{"a\x00b", "ab"},
		{"", ""},
	}
	for _, c := range cases {
		require.Equal(t, c.want, CleanText(c.in))
	}
}
