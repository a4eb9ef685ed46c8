package wallet

import (
	"strings"
	"testing"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want bool
	}{
		{
			name: "system program address",
			addr: "11111111111111111111111111111111",
			want: true,
		},
		{
			name: "typical address",
			addr: "DYw8jCTfwHNRJhhmFcbXvVDTqWMEVFBX6ZKUmG5CNSKK",
			want: true,
		},
		{
			name: "empty",
			addr: "",
			want: false,
		},
		{
			name: "too short",
			addr: "abc",
			want: false,
		},
		{
			name: "too long",
			addr: strings.Repeat("1", 45),
			want: false,
		},
		{
			name: "invalid base58 characters",
			addr: "0OIl000000000000000000000000000000",
			want: false,
		},
		{
			name: "whitespace",
			addr: "1111111111111111111111111111111 ",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValid(tt.addr); got != tt.want {
				t.Errorf("IsValid(%q) = %v, want %v", tt.addr, got, tt.want)
			}
		})
	}
}
