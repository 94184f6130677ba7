package auth

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"required,oneof=ADMIN DRIVER"`
	// InviteKey ties a driver signup to an admin's fleet; required when
	// Role is DRIVER, ignored otherwise.
	InviteKey string  `json:"invite_key"`
	Phone     *string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	AdminID   string  `json:"admin_id,omitempty"`
	DriverID  string  `json:"driver_id,omitempty"`
	InviteKey string  `json:"invite_key,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}
