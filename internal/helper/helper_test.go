package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSolanaAddress(t *testing.T) {
	tests := []struct {
		addr string
		want bool
	}{
		{addr: "So11111111111111111111111111111111111111112", want: true},
		{addr: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", want: true},
		{addr: "0x1234567890abcdef1234567890abcdef12345678", want: false},
		{addr: "short", want: false},
		{addr: "", want: false},
		{addr: "So1111111111111111111111111111111111111111l", want: false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSolanaAddress(tt.addr), tt.addr)
	}
}

func TestShortAddr(t *testing.T) {
	assert.Equal(t, "So11…1112", ShortAddr("So11111111111111111111111111111111111111112"))
	assert.Equal(t, "abc", ShortAddr("abc"))
}

func TestPctBelow(t *testing.T) {
	assert.InDelta(t, 4, PctBelow(120, 115.2), 1e-9)
	assert.Zero(t, PctBelow(0, 1))
}
