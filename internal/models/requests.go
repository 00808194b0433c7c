package models

// RegisterRequest is the payload for account creation
type RegisterRequest struct {
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	Role              Role   `json:"role"`
	ModeratorCode     string `json:"moderator_code,omitempty"`
	Password          string `json:"password"`
	ConfirmPassword   string `json:"confirm_password"`
	SecurityQuestion1 string `json:"security_question_1"`
	SecurityAnswer1   string `json:"security_answer_1"`
	SecurityQuestion2 string `json:"security_question_2"`
	SecurityAnswer2   string `json:"security_answer_2"`
}

// LoginRequest is the payload for authentication
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RecoveryEmailRequest starts the forgot-password flow
type RecoveryEmailRequest struct {
	Email string `json:"email"`
}

// RecoveryAnswersRequest submits the two security answers
type RecoveryAnswersRequest struct {
	Answer1 string `json:"answer_1"`
	Answer2 string `json:"answer_2"`
}

// VerifyCodeRequest submits the emailed verification code
type VerifyCodeRequest struct {
	Code string `json:"code"`
}

// ResetPasswordRequest sets a new password after code verification
type ResetPasswordRequest struct {
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}
