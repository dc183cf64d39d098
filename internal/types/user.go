package types

// Role is the access profile of a login principal.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleVendedor Role = "vendedor"
)

// Roles returns every Role in declaration order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleVendedor}
}

// Valid reports whether r is a declared Role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVendedor:
		return true
	}
	return false
}

// ParseRole converts a wire string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", &ValidationError{Field: "role", Reason: "perfil desconhecido: " + s}
	}
	return r, nil
}

// Label is the human-readable profile name shown to operators.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Administrador"
	case RoleVendedor:
		return "Vendedor"
	}
	return string(r)
}

// Bootstrap admin, synthesized whenever the user collection is empty.
const (
	BootstrapAdminID       = "admin-0"
	BootstrapAdminUsername = "admin"
	BootstrapAdminPassword = "123"
)

// BootstrapAdmin returns the default administrative login.
func BootstrapAdmin() User {
	return User{
		ID:       BootstrapAdminID,
		Username: BootstrapAdminUsername,
		Password: BootstrapAdminPassword,
		Role:     RoleAdmin,
	}
}

// User is a login principal. Password is stored and compared in plaintext.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Role     Role   `json:"role"`
}

// UserInput is a User before the store assigns an id.
type UserInput struct {
	Username string
	Password string
	Role     Role
}

// Validate requires username and password and a declared role.
func (in UserInput) Validate() error {
	if in.Username == "" {
		return &ValidationError{Field: "username", Reason: "campo obrigatório"}
	}
	if in.Password == "" {
		return &ValidationError{Field: "password", Reason: "campo obrigatório"}
	}
	if !in.Role.Valid() {
		return &ValidationError{Field: "role", Reason: "perfil inválido"}
	}
	return nil
}
