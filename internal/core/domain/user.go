package domain

// Role values issued by the booking API.
const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleCustomer = "customer"
)

// loginRoles is the allow-list of roles permitted to open a dashboard session.
// Customers authenticate against the same backend but have no business here.
var loginRoles = map[string]struct{}{
	RoleAdmin: {},
	RoleStaff: {},
}

// RoleCanLogin reports whether the given role may establish a dashboard session.
func RoleCanLogin(role string) bool {
	_, ok := loginRoles[role]
	return ok
}

// User is the identity record returned by the booking API.
type User struct {
	ID         int64  `json:"id"`
	FullName   string `json:"full_name"`
	Email      string `json:"email"`
	Avatar     string `json:"avatar,omitempty"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
	IsDeleted  bool   `json:"is_deleted"`
}
