package models

// Credentials is the input to a login attempt.
type Credentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// AuthResult is the outcome of a login attempt.
type AuthResult struct {
	Success      bool   `json:"success"`
	Token        string `json:"token,omitempty"`
	Username     string `json:"username,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}
