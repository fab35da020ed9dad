package model

import "time"

// Recipe media types.
const (
	RecipeTypeImage = "image"
	RecipeTypeVideo = "video"
)

// RecipeCategories lists the accepted values of Recipe.Category.
var RecipeCategories = []string{
	"APPETIZERS",
	"MAIN COURSES",
	"SIDE DISHES",
	"DESSERTS",
	"SOUPS & SALADS",
	"BEVERAGES",
	"SNACKS",
	"VEGETARIAN",
}

// RecipeDifficulties lists the accepted values of Recipe.Difficulty.
var RecipeDifficulties = []string{"easy", "intermediate", "advanced"}

// Recipe represents a row of the `recipes` table.
type Recipe struct {
	ID          uint64       `json:"_id"`
	OwnerID     uint64       `json:"-"`
	Owner       *UserSummary `json:"owner,omitempty"`
	MediaFile   string       `json:"mediaFile"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Type        string       `json:"type"`
	Ingredients []string     `json:"ingredients"`
	Steps       []string     `json:"steps"`
	Difficulty  string       `json:"difficulty"`
	PrepTime    int          `json:"prepTime"`
	CookTime    int          `json:"cookTime"`
	Category    string       `json:"category"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// RecipeWithLikes decorates a recipe with its like count.
type RecipeWithLikes struct {
	Recipe
	LikesCount int64 `json:"likesCount"`
}

// RecipeQuery filters and paginates recipe listings.
type RecipeQuery struct {
	Query    string // substring matched against title and description
	OwnerID  uint64 // optional owner filter
	Type     string // optional media type filter
	Page     int    // 1-based
	Limit    int
	SortBy   string // API field name such as createdAt or prepTime
	SortDesc bool
}

// Offset returns the number of rows skipped before the current page.
func (q RecipeQuery) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

// RecipePage is one page of a recipe listing.
type RecipePage struct {
	Recipes      []RecipeWithLikes `json:"recipes"`
	TotalRecipes int64             `json:"totalRecipes"`
	CurrentPage  int               `json:"currentPage,omitempty"`
	TotalPages   int               `json:"totalPages,omitempty"`
}

// ValidCategory reports whether c is one of RecipeCategories.
func ValidCategory(c string) bool { return contains(RecipeCategories, c) }

// ValidDifficulty reports whether d is one of RecipeDifficulties.
func ValidDifficulty(d string) bool { return contains(RecipeDifficulties, d) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
