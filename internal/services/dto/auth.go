package dto

// RegisterCustomerRequest - регистрация заказчика
type RegisterCustomerRequest struct {
	FirstName string `json:"firstName" validate:"required,min=1,max=100"`
	LastName  string `json:"lastName" validate:"required,min=1,max=100"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Postcode  string `json:"postcode" validate:"omitempty,max=10"`
	Password  string `json:"password" validate:"required,min=8"`
}

// RegisterTradespersonRequest - регистрация мастера вместе с профилем
type RegisterTradespersonRequest struct {
	FirstName     string `json:"firstName" validate:"required,min=1,max=100"`
	LastName      string `json:"lastName" validate:"required,min=1,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"omitempty,max=20"`
	Postcode      string `json:"postcode" validate:"omitempty,max=10"`
	Password      string `json:"password" validate:"required,min=8"`
	SelectedTrade string `json:"selectedTrade" validate:"required"`
	Experience    string `json:"experience" validate:"omitempty,max=100"`
	CompanyName   string `json:"companyName" validate:"omitempty,max=200"`
	BusinessType  string `json:"businessType" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type ChangeUserStatusRequest struct {
	Status string `json:"status" validate:"required,is-user-status"`
}

type AuthResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Postcode       string `json:"postcode,omitempty"`
	Role           string `json:"role"`
	Status         string `json:"status"`
	EmailVerified  bool   `json:"emailVerified"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	CreatedAt      string `json:"createdAt"`
}
