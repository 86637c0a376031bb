package registration

import (
	_ "embed"
	"strings"
)

//go:embed common_passwords.txt
var commonPasswordList string

// commonPasswords is the lowercased set of passwords that are rejected as too common.
var commonPasswords = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, line := range strings.Split(commonPasswordList, "\n") {
		if p := strings.TrimSpace(line); p != "" {
			set[strings.ToLower(p)] = struct{}{}
		}
	}
	return set
}()

func isCommonPassword(pw string) bool {
	_, ok := commonPasswords[strings.ToLower(strings.TrimSpace(pw))]
	return ok
}
