package dto

type LoginDTO struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type RefreshDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type RegisterDTO struct {
	Username     string `json:"username"     validate:"required,min=3,max=50"`
	EmailAddress string `json:"emailAddress" validate:"required,email,max=120"`
	FirstName    string `json:"firstName"    validate:"required,max=50"`
	LastName     string `json:"lastName"     validate:"required,max=50"`
	Phone        string `json:"phone"        validate:"omitempty,max=30"`
	Password     string `json:"password"     validate:"required,min=8"`
}

type ForgotPasswordDTO struct {
	EmailAddress string `json:"emailAddress" validate:"required,email,max=120"`
}

type ResetPasswordDTO struct {
	Password string `json:"password" validate:"required,min=8"`
}
