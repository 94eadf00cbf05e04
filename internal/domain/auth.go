package domain

// Role names as carried in token claims.
const (
	RolePrefix      = "ROLE_"
	RoleViewer      = "VIEWER"
	RoleRecommender = "RECOMMENDER"
)

// TokenStorageKey is the durable slot holding the raw session token.
const TokenStorageKey = "jwtToken"

// Regions of the console's pages that the route gate authorizes separately.
const (
	RegionItems              = "items"
	RegionRecommendationForm = "recommendation-form"
	RegionRecommendedItems   = "recommended-items"
)
