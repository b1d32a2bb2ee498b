package model

// User 平台用户
type User struct {
	UserID         int    `json:"userID"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	PasswordHash   string `json:"passwordHash,omitempty"`
	Points         int    `json:"points"`
	UserIDFirebase string `json:"userIDfireBase,omitempty"`
	OTP            string `json:"otp,omitempty"`
}
