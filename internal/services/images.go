package services

import "strings"

// Artwork kinds understood by [ImageURL].
const (
	ImagePoster   = "poster"
	ImageBackdrop = "backdrop"
	ImageProfile  = "profile"
)

// Size names understood by [ImageURL].
const (
	SizeSmall    = "small"
	SizeMedium   = "medium"
	SizeLarge    = "large"
	SizeOriginal = "original"
)

// DefaultImageBaseURL is the TMDB image CDN.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p"

var imageSizes = map[string]map[string]string{
	ImagePoster:   {SizeSmall: "w185", SizeMedium: "w342", SizeLarge: "w500", SizeOriginal: "original"},
	ImageBackdrop: {SizeSmall: "w300", SizeMedium: "w780", SizeLarge: "w1280", SizeOriginal: "original"},
	ImageProfile:  {SizeSmall: "w45", SizeMedium: "w185", SizeLarge: "h632", SizeOriginal: "original"},
}

// ImageURL builds a full artwork URL.
//
// An empty path yields "". Unknown kinds fall back to poster and unknown sizes to medium.
func ImageURL(base, path, kind, size string) string {
	if path == "" {
		return ""
	}
	if base == "" {
		base = DefaultImageBaseURL
	}

	sizes, ok := imageSizes[kind]
	if !ok {
		sizes = imageSizes[ImagePoster]
	}
	dim, ok := sizes[size]
	if !ok {
		dim = sizes[SizeMedium]
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + "/" + dim + path
}
