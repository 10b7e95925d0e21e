package server

// This file is only for test purpose and is only loaded by test framework.

var (
	// SafeReferrer exposes the referer sanitizer.
	SafeReferrer = safeReferrer
	// SafeNext exposes the login redirection sanitizer.
	SafeNext = safeNext
)
