package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "Hello World", want: "hello-world"},
		{in: "Hello, World!", want: "hello-world"},
		{in: "  Leading and trailing  ", want: "leading-and-trailing"},
		{in: "Crème Brûlée", want: "creme-brulee"},
		{in: "Ærø og Østfold", want: "ærø-og-østfold"},
		{in: "snake_case stays", want: "snake_case-stays"},
		{in: "C++ tips & tricks", want: "c-tips-tricks"},
		{in: "2024 review", want: "2024-review"},
		{in: "!!!", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
