package service

import "fmt"

var (
	recipeIngredients = [...]string{
		"Vegetables", "Meat", "Fish", "Poultry",
		"Grains", "Dairy", "Fruits", "Legumes",
	}
	cookingMethods = [...]string{
		"Steamed", "Grilled", "Baked", "Sauteed",
		"Raw", "Boiled", "Fried", "Roasted",
	}
	cuisineStyles = [...]string{
		"Mediterranean", "Asian", "Mexican", "Italian",
		"Middle Eastern", "American", "French", "Indian",
	}
)

// wrap maps any int into [0, n).
func wrap(code, n int) int {
	m := code % n
	if m < 0 {
		m += n
	}
	return m
}

// GenerateRecipeText maps a decrypted code to a fixed recipe description.
func GenerateRecipeText(code int) string {
	ingredient := recipeIngredients[wrap(code, len(recipeIngredients))]
	method := cookingMethods[wrap(code+1, len(cookingMethods))]
	style := cuisineStyles[wrap(code+2, len(cuisineStyles))]
	return fmt.Sprintf("%s %s with %s flavors - Healthy and delicious!", method, ingredient, style)
}
