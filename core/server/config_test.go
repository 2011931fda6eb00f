package server_test

import (
	"testing"

	"github.com/Sydwelll/nft-marketplace-backend/core/server"

	"github.com/stretchr/testify/assert"
)

func TestConfig_HasOperator(t *testing.T) {
	tests := []struct {
		name     string
		operator string
		want     bool
	}{
		{"Address", "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", true},
		{"Name", "operator", true},
		{"Zero", "0x0000000000000000000000000000000000000000", false},
		{"Blank", "  ", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := server.Config{Operator: tt.operator}
			assert.Equal(t, tt.want, c.HasOperator())
		})
	}
}
