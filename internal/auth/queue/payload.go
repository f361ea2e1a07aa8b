package queue

// VerifyOTPPayload is the body of a verify_otp job. The OTP travels in
// plaintext here because the delivery worker has to put it in the email; the
// cache and database only ever see the hash.
type VerifyOTPPayload struct {
	Email string `json:"email"`
	OTP   int    `json:"otp"`
}

// WelcomeEmailPayload is the body of a welcome_email job.
type WelcomeEmailPayload struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
}

// AccountDeletionPayload is the body of an account_deletion_email job.
type AccountDeletionPayload struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
}
