package service

import (
	"regexp"
	"unicode/utf8"
)

const (
	minUsernameLen = 5
	maxUsernameLen = 32
	minPasswordLen = 8
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func validPassword(password string) bool {
	return utf8.RuneCountInString(password) >= minPasswordLen
}

func validUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	return n >= minUsernameLen && n <= maxUsernameLen
}
