// Package validation provides input validation for accounts and content.
package validation

import (
	"bufio"
	_ "embed"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MinPasswordLength = 8
	MaxUsernameLength = 150
	MaxNameLength     = 150
	MaxEmailLength    = 254

	maxSimilarity = 0.7
)

//go:embed common_passwords.txt
var commonPasswordList string

var (
	commonPasswords = loadCommonPasswords(commonPasswordList)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	attributeSplit  = regexp.MustCompile(`\W+`)
)

func loadCommonPasswords(raw string) map[string]struct{} {
	set := make(map[string]struct{})
	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		if w := strings.TrimSpace(sc.Text()); w != "" {
			set[strings.ToLower(w)] = struct{}{}
		}
	}
	return set
}

// PasswordProblems lists every rule the password breaks. attributes are the
// user's own values (username, email, names) the password must not resemble.
// An empty result means the password is acceptable.
func PasswordProblems(password string, attributes ...string) []string {
	var problems []string

	for _, attr := range attributes {
		if isSimilar(password, attr) {
			problems = append(problems, "The password is too similar to your personal information.")
			break
		}
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		problems = append(problems, "This password is too short. It must contain at least 8 characters.")
	}
	if _, ok := commonPasswords[strings.ToLower(strings.TrimSpace(password))]; ok {
		problems = append(problems, "This password is too common.")
	}
	if password != "" && isNumeric(password) {
		problems = append(problems, "This password is entirely numeric.")
	}
	return problems
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isSimilar(password, attribute string) bool {
	attribute = strings.ToLower(attribute)
	if attribute == "" || password == "" {
		return false
	}
	pw := strings.ToLower(password)
	parts := append([]string{attribute}, attributeSplit.Split(attribute, -1)...)
	for _, part := range parts {
		if part == "" {
			continue
		}
		if similarity(pw, part) >= maxSimilarity {
			return true
		}
	}
	return false
}

// similarity returns 2*M/T where M is the longest common subsequence length
// and T the combined length of both strings.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			switch {
			case ra[i-1] == rb[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return 2 * float64(prev[len(rb)]) / float64(total)
}

// UsernameProblem returns a message when the username is unacceptable.
func UsernameProblem(username string) string {
	switch {
	case username == "":
		return "This field may not be blank."
	case utf8.RuneCountInString(username) > MaxUsernameLength:
		return "Ensure this field has no more than 150 characters."
	case !usernamePattern.MatchString(username):
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	}
	return ""
}

// EmailProblem returns a message when a non-empty email is malformed.
func EmailProblem(email string) string {
	if email == "" {
		return ""
	}
	if len(email) > MaxEmailLength {
		return "Ensure this field has no more than 254 characters."
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return "Enter a valid email address."
	}
	return ""
}

// MaxLengthProblem returns a message when value exceeds max runes.
func MaxLengthProblem(value string, max int) string {
	if utf8.RuneCountInString(value) > max {
		return fmt.Sprintf("Ensure this field has no more than %d characters.", max)
	}
	return ""
}
