package services

import (
	"net/url"
	"strconv"
)

// Category names accepted by [Catalogue.Movies].
const (
	CategoryPopular        = "popular"
	CategoryTrending       = "trending"
	CategoryNowPlaying     = "now-playing"
	CategoryAction         = "action"
	CategoryComedy         = "comedy"
	CategoryDrama          = "drama"
	CategoryHorror         = "horror"
	CategoryScienceFiction = "science-fiction"
)

// Category maps a listing name to its endpoint.
type Category struct {
	Name     string
	Label    string
	Endpoint string
	Params   url.Values
}

func discoverGenre(id int) url.Values {
	return url.Values{"with_genres": {strconv.Itoa(id)}}
}

var categories = []Category{
	{
		Name:     CategoryPopular,
		Label:    "Popular",
		Endpoint: "discover/movie",
		Params: url.Values{
			"include_adult": {"false"},
			"include_video": {"false"},
			"sort_by":       {"popularity.desc"},
		},
	},
	{Name: CategoryTrending, Label: "Trending", Endpoint: "trending/movie/week"},
	{Name: CategoryNowPlaying, Label: "Now Playing", Endpoint: "movie/now_playing"},
	{Name: CategoryAction, Label: "Action", Endpoint: "discover/movie", Params: discoverGenre(28)},
	{Name: CategoryComedy, Label: "Comedy", Endpoint: "discover/movie", Params: discoverGenre(35)},
	{Name: CategoryDrama, Label: "Drama", Endpoint: "discover/movie", Params: discoverGenre(18)},
	{Name: CategoryHorror, Label: "Horror", Endpoint: "discover/movie", Params: discoverGenre(27)},
	{Name: CategoryScienceFiction, Label: "Science Fiction", Endpoint: "discover/movie", Params: discoverGenre(878)},
}

// Categories returns the listing categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// LookupCategory returns the named category and whether it exists.
// Unknown names resolve to the popular category.
func LookupCategory(name string) (Category, bool) {
	for _, c := range categories {
		if c.Name == name {
			return c, true
		}
	}
	return categories[0], false
}

// CategoryNames lists the accepted category names.
func CategoryNames() []string {
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, c.Name)
	}
	return names
}
