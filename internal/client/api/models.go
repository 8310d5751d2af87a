package api

// User is the backend profile shape consumed by the auth subsystem.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// LoginResult is returned by password and biometric login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
