package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"quill/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:embed categories.yml
var defaultCategoriesYAML []byte

type categoryFixture struct {
	Categories []struct {
		Name string `yaml:"name"`
	} `yaml:"categories"`
}

// ParseCategories reads category names from a YAML fixture, dropping blanks
// and duplicates.
func ParseCategories(data []byte) ([]string, error) {
	var fx categoryFixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse category fixture: %w", err)
	}
	seen := make(map[string]bool, len(fx.Categories))
	names := make([]string, 0, len(fx.Categories))
	for _, c := range fx.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names, nil
}

// DefaultCategories returns the built-in category list.
func DefaultCategories() []string {
	names, err := ParseCategories(defaultCategoriesYAML)
	if err != nil {
		panic(err)
	}
	return names
}

// LoadCategories reads the fixture at path, or the built-in list when path is empty.
func LoadCategories(path string) ([]string, error) {
	if path == "" {
		return DefaultCategories(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read category fixture: %w", err)
	}
	return ParseCategories(data)
}

// Categories creates the named categories that do not exist yet and returns
// all of them. It is safe to run repeatedly.
func Categories(db *gorm.DB, names []string) ([]models.Category, error) {
	out := make([]models.Category, 0, len(names))
	for _, name := range names {
		category := models.Category{Name: name}
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&category).Error; err != nil {
			return nil, fmt.Errorf("create category %q: %w", name, err)
		}
		if err := db.Where("name = ?", name).First(&category).Error; err != nil {
			return nil, fmt.Errorf("load category %q: %w", name, err)
		}
		out = append(out, category)
	}
	return out, nil
}
