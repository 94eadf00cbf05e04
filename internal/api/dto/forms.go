package dto

// LoginForm is the body of POST /login.
type LoginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

// RecommendationForm is the body of POST /recommendations.
type RecommendationForm struct {
	Preferences string `form:"preferences"`
}
