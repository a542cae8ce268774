package aria2_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"aria2tm/internal/aria2"
)

func TestToBytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{name: "zero", input: "0", want: 0},
		{name: "bare number", input: "934", want: 934},
		{name: "kilo", input: "1K", want: 1024},
		{name: "kibibyte suffix", input: "2MiB", want: 2 * 1024 * 1024},
		{name: "plain byte suffix", input: "512KB", want: 512 * 1024},
		{name: "lowercase", input: "4.2mib", want: 4404019},
		{name: "giga", input: "1G", want: 1024 * 1024 * 1024},
		{name: "tera", input: "3TiB", want: 3 * 1024 * 1024 * 1024 * 1024},
		{name: "fractional", input: "1.5K", want: 1536},
		{name: "whitespace between number and unit", input: "10 MiB", want: 10 * 1024 * 1024},
		{name: "empty", input: "", want: 0},
		{name: "garbage", input: "garbage", want: 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, aria2.ToBytes(tt.input))
		})
	}
}
