package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchTerms(t *testing.T) {
	assert.Equal(t, []string{"go", "fiber", "gorm"}, SearchTerms(" go, fiber\tgorm "))
	assert.Empty(t, SearchTerms(" , "))
}

func TestOrderClauses(t *testing.T) {
	tests := []struct {
		ordering string
		want     []string
	}{
		{"", []string{"posts.created_at DESC", "posts.id DESC"}},
		{"title", []string{"posts.title ASC", "posts.id DESC"}},
		{"-updated_at,title", []string{"posts.updated_at DESC", "posts.title ASC", "posts.id DESC"}},
		{"bogus,-password", []string{"posts.created_at DESC", "posts.id DESC"}},
		{"bogus, -title", []string{"posts.title DESC", "posts.id DESC"}},
	}
	for _, tt := range tests {
		t.Run(tt.ordering, func(t *testing.T) {
			assert.Equal(t, tt.want, OrderClauses(tt.ordering))
		})
	}
}
