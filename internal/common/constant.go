package common

// AuthorizationHeaderName carries the bearer access token on HTTP requests.
const AuthorizationHeaderName = "Authorization"

// VerificationCodeDigits is the length of emailed verification codes.
const VerificationCodeDigits = 4
