// Package httpapi exposes the REST surface of the server: route wiring,
// request validation, the bearer-token gate, and the JSON error contract.
package httpapi

// FieldError is one entry of the "errors" array returned to clients.
// Param is set only for shape-validation failures and names the offending
// field, mirroring what API consumers already expect from the endpoint
// contract.
type FieldError struct {
	Msg   string `json:"msg"`
	Param string `json:"param,omitempty"`
}

type errorResponse struct {
	Errors []FieldError `json:"errors"`
}

func singleError(msg string) errorResponse {
	return errorResponse{Errors: []FieldError{{Msg: msg}}}
}

const (
	msgServerError        = "Server error"
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Invalid email or password"
	msgNoToken            = "No token, authorization denied"
	msgInvalidToken       = "Token is not valid"
	msgUserNotFound       = "User not found"
	msgTooManyAttempts    = "Too many login attempts, try again later"
	msgInvalidBody        = "Invalid request body"
)
