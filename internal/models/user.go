package models

// Role is the access level of a user account
type Role string

// User roles. Moderators additionally get access to the user database.
const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModerator
}

// User represents a row of the users table
type User struct {
	ID                  int    `json:"id"`
	FirstName           string `json:"first_name"`
	LastName            string `json:"last_name"`
	Username            string `json:"username"`
	Email               string `json:"email"`
	Role                Role   `json:"role"`
	PasswordHash        string `json:"-"` // Never serialize password hash
	SecurityQuestion1   string `json:"security_question_1"`
	SecurityAnswer1Hash string `json:"-"`
	SecurityQuestion2   string `json:"security_question_2"`
	SecurityAnswer2Hash string `json:"-"`
}

// UserListItem is the moderator view of a user. The password hash is part of
// this view on purpose: the moderator user-database table displays it.
type UserListItem struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"password_hash"`
}
