package domain

// Item is a catalog entry served by the backend's GraphQL API.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}
