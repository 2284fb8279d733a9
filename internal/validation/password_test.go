package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPasswordProblems(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name       string
		password   string
		attributes []string
		want       []string
	}{
		{"Valid", "correct-horse-battery", []string{"alice", "alice@example.com"}, nil},
		{"Exactly Min Length", "Zq8!rT4w", nil, nil},
		{"Too Short", "Zq8!rT4", nil, []string{"too short"}},
		{"Common", "password123", nil, []string{"too common"}},
		{"Common Case Insensitive", "PassWord123", nil, []string{"too common"}},
		{"Entirely Numeric", "90817263545", nil, []string{"entirely numeric"}},
		{"Short Numeric And Common", "123456", nil, []string{"too short", "too common", "entirely numeric"}},
		{"Similar To Username", "johnsmith1", []string{"johnsmith"}, []string{"too similar"}},
		{"Similar To Email Part", "margaret77", []string{"margaret@example.com"}, []string{"too similar"}},
		{"Empty Attributes Ignored", "correct-horse-battery", []string{"", ""}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PasswordProblems(tt.password, tt.attributes...)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Len(t, got, len(tt.want))
			joined := strings.ToLower(strings.Join(got, " "))
			for _, w := range tt.want {
				assert.Contains(t, joined, w)
			}
		})
	}
}

func TestUsernameProblem(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "test_user123", false},
		{"Allowed Punctuation", "a.b@c+d-e", false},
		{"Empty", "", true},
		{"Space", "has space", true},
		{"Illegal Chars", "user#1", true},
		{"Too Long", strings.Repeat("u", 151), true},
		{"Max Length", strings.Repeat("u", 150), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UsernameProblem(tt.username)
			if tt.wantErr {
				assert.NotEmpty(t, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestEmailProblem(t *testing.T) {
	t.Parallel()
	assert.Empty(t, EmailProblem(""))
	assert.Empty(t, EmailProblem("reader@example.com"))
	assert.NotEmpty(t, EmailProblem("not-an-email"))
	assert.NotEmpty(t, EmailProblem("Name <reader@example.com>"))
	assert.NotEmpty(t, EmailProblem("reader@localhost"))
}

func TestMaxLengthProblem(t *testing.T) {
	t.Parallel()
	assert.Empty(t, MaxLengthProblem("héllo", 5))
	assert.Equal(t, "Ensure this field has no more than 4 characters.", MaxLengthProblem("hello", 4))
}
