package errors

import (
	"fmt"
	"net/http"
)

// Code pairs a business error code with its HTTP status and default message
type Code struct {
	Code    int
	Status  int
	Message string
}

// Error codes grouped by domain range
const (
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007

	// Auth errors (2000-2999)
	ErrAuthInvalidCredentials = 2000
	ErrAuthInvalidToken       = 2001
	ErrAuthEmailExists        = 2002
	ErrAuthUsernameExists     = 2003
	ErrAuthWeakPassword       = 2004

	// Media errors (3000-3999)
	ErrMediaInvalidType   = 3000
	ErrMediaTooLarge      = 3001
	ErrMediaMissingFile   = 3002
	ErrMediaNotOwned      = 3003
	ErrMediaNotFound      = 3004
	ErrMediaStorageFailed = 3005
	ErrMediaInvalidURL    = 3006

	// Post errors (4000-4999)
	ErrPostNotFound     = 4000
	ErrPostInvalidInput = 4001

	// Story errors (5000-5999)
	ErrStoryNotFound = 5000
	ErrStoryExpired  = 5001

	// Verification errors (6000-6999)
	ErrVerificationPendingExists = 6000
	ErrVerificationNotFound      = 6001
	ErrVerificationNotPending    = 6002

	// OTP errors (7000-7999)
	ErrOtpNotFound        = 7000
	ErrOtpExpired         = 7001
	ErrOtpInvalid         = 7002
	ErrOtpAlreadyVerified = 7003
	ErrOtpTooManyAttempts = 7004
	ErrOtpCooldown        = 7005
	ErrOtpDeliveryFailed  = 7006
	ErrOtpStillValid      = 7007

	// User/follow errors (8000-8999)
	ErrUserNotFound = 8000
	ErrSelfFollow   = 8001
	ErrUserBanned   = 8002

	// Admin errors (9000-9999)
	ErrAdminInvalidCredentials = 9000
)

var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "Internal server error"},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusUnprocessableEntity, "Validation failed"},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "Resource not found"},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "Unauthorized"},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "Forbidden"},
	ErrConflict:        {ErrConflict, http.StatusConflict, "Resource conflict"},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "Too many requests"},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "Bad request"},

	ErrAuthInvalidCredentials: {ErrAuthInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	ErrAuthInvalidToken:       {ErrAuthInvalidToken, http.StatusUnauthorized, "Unauthenticated"},
	ErrAuthEmailExists:        {ErrAuthEmailExists, http.StatusUnprocessableEntity, "Email already taken"},
	ErrAuthUsernameExists:     {ErrAuthUsernameExists, http.StatusUnprocessableEntity, "Username already taken"},
	ErrAuthWeakPassword:       {ErrAuthWeakPassword, http.StatusUnprocessableEntity, "Password is too weak"},

	ErrMediaInvalidType:   {ErrMediaInvalidType, http.StatusUnprocessableEntity, "Unsupported file type"},
	ErrMediaTooLarge:      {ErrMediaTooLarge, http.StatusUnprocessableEntity, "File size exceeds limit"},
	ErrMediaMissingFile:   {ErrMediaMissingFile, http.StatusUnprocessableEntity, "File is required"},
	ErrMediaNotOwned:      {ErrMediaNotOwned, http.StatusForbidden, "Unauthorized to access this file"},
	ErrMediaNotFound:      {ErrMediaNotFound, http.StatusNotFound, "File not found"},
	ErrMediaStorageFailed: {ErrMediaStorageFailed, http.StatusInternalServerError, "Storage operation failed"},
	ErrMediaInvalidURL:    {ErrMediaInvalidURL, http.StatusUnprocessableEntity, "Invalid media URL"},

	ErrPostNotFound:     {ErrPostNotFound, http.StatusNotFound, "Post not found"},
	ErrPostInvalidInput: {ErrPostInvalidInput, http.StatusUnprocessableEntity, "Invalid post input"},

	ErrStoryNotFound: {ErrStoryNotFound, http.StatusNotFound, "Story not found"},
	ErrStoryExpired:  {ErrStoryExpired, http.StatusGone, "Story has expired"},

	ErrVerificationPendingExists: {ErrVerificationPendingExists, http.StatusUnprocessableEntity, "You already have a pending verification request"},
	ErrVerificationNotFound:      {ErrVerificationNotFound, http.StatusNotFound, "Verification request not found"},
	ErrVerificationNotPending:    {ErrVerificationNotPending, http.StatusNotFound, "No pending verification request found"},

	ErrOtpNotFound:        {ErrOtpNotFound, http.StatusNotFound, "OTP not found. Please request a new one."},
	ErrOtpExpired:         {ErrOtpExpired, http.StatusGone, "OTP has expired. Please request a new one."},
	ErrOtpInvalid:         {ErrOtpInvalid, http.StatusBadRequest, "Invalid OTP"},
	ErrOtpAlreadyVerified: {ErrOtpAlreadyVerified, http.StatusBadRequest, "OTP already verified"},
	ErrOtpTooManyAttempts: {ErrOtpTooManyAttempts, http.StatusTooManyRequests, "Maximum verification attempts exceeded. Please request a new OTP."},
	ErrOtpCooldown:        {ErrOtpCooldown, http.StatusTooManyRequests, "Please wait before requesting a new OTP"},
	ErrOtpDeliveryFailed:  {ErrOtpDeliveryFailed, http.StatusInternalServerError, "Failed to send OTP"},
	ErrOtpStillValid:      {ErrOtpStillValid, http.StatusTooManyRequests, "An active OTP already exists. Please wait for it to expire."},

	ErrUserNotFound: {ErrUserNotFound, http.StatusNotFound, "User not found"},
	ErrSelfFollow:   {ErrSelfFollow, http.StatusBadRequest, "You cannot follow yourself"},
	ErrUserBanned:   {ErrUserBanned, http.StatusForbidden, "Account is banned"},

	ErrAdminInvalidCredentials: {ErrAdminInvalidCredentials, http.StatusUnauthorized, "Invalid admin credentials"},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns the HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the default message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}

// FormatError formats an error message with optional details
func FormatError(code int, details ...string) string {
	msg := GetMessage(code)
	if len(details) > 0 && details[0] != "" {
		return fmt.Sprintf("%s: %s", msg, details[0])
	}
	return msg
}
