package domain

// EnforceRequest asks whether a principal holding Role may perform Action on Resource.
type EnforceRequest struct {
	Role     string `json:"role" binding:"required"`
	Resource string `json:"resource" binding:"required"`
	Action   string `json:"action" binding:"required"`
}

type Permission struct {
	Role     string `json:"role"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

const (
	RoleAdmin    = "Admin"
	RoleEmployee = "Employee"
)
