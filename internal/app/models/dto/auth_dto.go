package dto

// RegisterRequest represents the student sign-up payload.
type RegisterRequest struct {
	Email      string `json:"email" binding:"required,email" example:"jordan.lee@example.edu"`
	Password   string `json:"password" binding:"required,min=8" example:"correct-horse"`
	FirstName  string `json:"firstName" binding:"required" example:"Jordan"`
	LastName   string `json:"lastName" binding:"required" example:"Lee"`
	Identifier string `json:"identifier" binding:"required" example:"2026-0042"`
}

// LoginRequest represents the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"jordan.lee@example.edu"`
	Password string `json:"password" binding:"required" example:"correct-horse"`
}

// TokenResponse carries the issued access token.
type TokenResponse struct {
	Token     string           `json:"token"`
	ExpiresIn int              `json:"expiresIn" example:"3600"`
	User      UserResponse     `json:"user"`
	Student   *StudentResponse `json:"student,omitempty"`
}

// UserResponse is the public view of a user account.
type UserResponse struct {
	ID        int64  `json:"id" example:"1"`
	Email     string `json:"email" example:"jordan.lee@example.edu"`
	FirstName string `json:"firstName" example:"Jordan"`
	LastName  string `json:"lastName" example:"Lee"`
	RoleType  string `json:"roleType" example:"STUDENT" enums:"STUDENT,ADMIN"`
}
