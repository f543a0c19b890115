package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidCategory = errors.New("invalid category")

// Category is one of the five supported news topics a user can subscribe to.
type Category string

const (
	CategoryTechnology    Category = "Technology"
	CategoryBusiness      Category = "Business"
	CategorySports        Category = "Sports"
	CategoryHealth        Category = "Health"
	CategoryEntertainment Category = "Entertainment"
)

var categories = []Category{
	CategoryTechnology,
	CategoryBusiness,
	CategorySports,
	CategoryHealth,
	CategoryEntertainment,
}

// Categories returns the supported categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory accepts only the exact enumeration values.
func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q (valid: %s)", ErrInvalidCategory, s, strings.Join(categoryNames(), ", "))
}

func (c Category) Valid() bool {
	_, err := ParseCategory(string(c))
	return err == nil
}

// Query is the lowercase form used by upstream news APIs.
func (c Category) Query() string {
	return strings.ToLower(string(c))
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: must be a string", ErrInvalidCategory)
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func categoryNames() []string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return names
}

// Article is a headline reduced to title and optional description.
// A nil Description means the upstream record had none.
type Article struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// HasText reports whether the description carries non-blank text.
func (a Article) HasText() bool {
	return a.Description != nil && strings.TrimSpace(*a.Description) != ""
}

type UserPreference struct {
	UserID string   `json:"user_id"`
	Field  Category `json:"field"`
}

type AudioArtifact struct {
	Filename    string `json:"audio_file"`
	URL         string `json:"audio_url"`
	ContentType string `json:"-"`
	Size        int64  `json:"-"`
}
