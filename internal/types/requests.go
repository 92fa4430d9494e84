package types

// SubmitRecipeRequest carries the plain dietary codes to encrypt and store.
// Codes are small integers chosen by the client (1=vegetables, 2=meat, ...).
type SubmitRecipeRequest struct {
	Ingredients int `json:"ingredients" binding:"gte=0"`
	Allergies   int `json:"allergies" binding:"gte=0"`
	Preferences int `json:"preferences" binding:"gte=0"`
	HealthGoal  int `json:"healthGoal" binding:"gte=0"`
}

// CreateSessionRequest proves wallet ownership by signing the params message.
type CreateSessionRequest struct {
	Address         string `json:"address" binding:"required,eth_addr"`
	PublicKey       string `json:"publicKey" binding:"required"`
	ContractAddress string `json:"contractAddress" binding:"required"`
	ChainID         int64  `json:"chainId" binding:"required"`
	StartTimestamp  int64  `json:"startTimestamp" binding:"required"`
	DurationDays    int    `json:"durationDays" binding:"required,gt=0"`
	Signature       string `json:"signature" binding:"required"`
}

// ListRecipesQuery are the optional listing filters.
type ListRecipesQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending generated rejected"`
	Owner  string `form:"owner" binding:"omitempty,eth_addr"`
	Query  string `form:"q"`
}
