package entity

const (
	RoleAdmin  = "admin"
	RoleViewer = "viewer"
)

type User struct {
	ID    string `firestore:"user_id" json:"user_id"`
	Email string `firestore:"email" json:"email"`
	Role  string `firestore:"role" json:"role"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
