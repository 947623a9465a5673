package response

// RegisterResponse is the response body for a successful registration
type RegisterResponse struct {
	Message string `json:"message"`
}

// LoginResponse carries the issued session token
type LoginResponse struct {
	Token string `json:"token"`
}
