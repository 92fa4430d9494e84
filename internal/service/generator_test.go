package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRecipeText(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "Grilled Vegetables with Mexican flavors - Healthy and delicious!"},
		{2, "Sauteed Fish with Middle Eastern flavors - Healthy and delicious!"},
		{7, "Steamed Legumes with Asian flavors - Healthy and delicious!"},
		{8, "Grilled Vegetables with Mexican flavors - Healthy and delicious!"},
		{-1, "Steamed Legumes with Asian flavors - Healthy and delicious!"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerateRecipeText(tt.code), "code %d", tt.code)
	}
}
