package main

import "fmt"

var (
	ErrNotFound = fmt.Errorf("not found")

	// Abuse checks
	ErrRateLimited   = fmt.Errorf("too many attempts, try again later")
	ErrTooFast       = fmt.Errorf("form submitted too quickly")
	ErrSpamSubmitted = fmt.Errorf("spam detected")

	// Input validation
	ErrInvalidInput   = fmt.Errorf("invalid input")
	ErrInvalidStatus  = fmt.Errorf("invalid inquiry status")
	ErrInvalidLicense = fmt.Errorf("invalid license type")
)
