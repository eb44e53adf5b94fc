package dto

type LoginDTO struct {
	Login    string `json:"login"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

type RefreshDTO struct {
	Refresh string `json:"refresh" validate:"required"`
}

type JWTPair struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

type LoginResponse struct {
	JWT       JWTPair `json:"jwt"`
	Detail    string  `json:"detail"`
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	LastLogin string  `json:"last_login"`
	Status    string  `json:"status"`
	IsStaff   bool    `json:"is_staff"`
}

type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type DetailResponse struct {
	Detail string `json:"detail"`
}
