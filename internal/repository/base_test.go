package repository

import (
	"errors"
	"fmt"
	"testing"

	"quill/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"wrapped pg unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), true},
		{"pg foreign key", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite message", errors.New("UNIQUE constraint failed: posts.slug"), true},
		{"other", errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}

func TestLookupError(t *testing.T) {
	err := lookupError(gorm.ErrRecordNotFound, "Post", "hello")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "Post hello not found", err.Error())

	err = lookupError(errors.New("boom"), "Post", 1)
	assert.Equal(t, models.CodeInternal, models.AsAppError(err).Code)

	field := models.NewFieldError("title", "bad")
	assert.Same(t, field, lookupError(field, "Post", 1))
}

func TestWriteError(t *testing.T) {
	field := models.NewFieldError("name", "required")
	assert.Same(t, field, writeError(fmt.Errorf("hook: %w", field)))
	assert.Equal(t, models.CodeInternal, models.AsAppError(writeError(errors.New("disk full"))).Code)
}
