package cache

import (
	"fmt"
	"time"
)

const (
	userKeyFormat      = "user:%d"
	categoryKeyFormat  = "category:%s"
	blacklistKeyFormat = "blacklist:%s"

	// CategoriesKey holds the full category list with counts.
	CategoriesKey = "categories:all"
)

const (
	UserTTL     = 5 * time.Minute
	CategoryTTL = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyFormat, userID)
}

func CategoryKey(slug string) string {
	return fmt.Sprintf(categoryKeyFormat, slug)
}

// BlacklistKey marks a revoked refresh token by jti.
func BlacklistKey(jti string) string {
	return fmt.Sprintf(blacklistKeyFormat, jti)
}
