package service

import (
	"testing"

	"quill/internal/models"

	"github.com/stretchr/testify/assert"
)

func code(err error) string {
	if err == nil {
		return ""
	}
	return models.AsAppError(err).Code
}

func TestAuthorGate(t *testing.T) {
	tests := []struct {
		name      string
		requester models.Requester
		want      string
	}{
		{"anonymous", models.Anonymous(), models.CodeUnauthorized},
		{"reader", models.Requester{UserID: 1}, models.CodeForbidden},
		{"author", models.Requester{UserID: 1, IsAuthor: true}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, code(AuthorGate(tt.requester)))
		})
	}
}

func TestOwnerGate(t *testing.T) {
	tests := []struct {
		name      string
		requester models.Requester
		authorID  uint
		want      string
	}{
		{"anonymous", models.Anonymous(), 1, models.CodeUnauthorized},
		{"owner", models.Requester{UserID: 1}, 1, ""},
		{"other author", models.Requester{UserID: 2, IsAuthor: true}, 1, models.CodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, code(OwnerGate(tt.requester, tt.authorID)))
		})
	}
}

func TestRequireAuthenticated(t *testing.T) {
	assert.Equal(t, models.CodeUnauthorized, code(RequireAuthenticated(models.Anonymous())))
	assert.NoError(t, RequireAuthenticated(models.Requester{UserID: 3}))
}
