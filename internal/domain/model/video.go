package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxDescriptionLength is the cap applied to video descriptions at
	// construction time, counted in runes.
	MaxDescriptionLength = 500

	// MaxTags is the cap applied to the tag list at construction time.
	MaxTags = 10

	watchURLPrefix = "https://www.youtube.com/watch?v="
)

var (
	ErrEmptyVideoID = errors.New("video ID cannot be empty")
)

// Video is an immutable snapshot of a platform video at fetch time.
// Construct via NewVideo so the description/tag caps always hold.
type Video struct {
	ID           string
	Title        string
	Description  string
	ViewCount    uint64
	PublishedAt  time.Time
	ChannelTitle string
	ChannelID    string
	Link         string
	ThumbnailURL string
	CategoryID   string
	Tags         []string
}

// NewVideo creates a Video, deriving the canonical watch link and
// enforcing the description and tag caps.
func NewVideo(
	id, title, description string,
	viewCount uint64,
	publishedAt time.Time,
	channelTitle, channelID, thumbnailURL, categoryID string,
	tags []string,
) (Video, error) {
	if id == "" {
		return Video{}, ErrEmptyVideoID
	}

	// Truncate by runes, not bytes, so multibyte text keeps exactly the
	// cap and never ends mid-rune.
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		description = string([]rune(description)[:MaxDescriptionLength])
	}
	if len(tags) > MaxTags {
		tags = tags[:MaxTags]
	}

	return Video{
		ID:           id,
		Title:        title,
		Description:  description,
		ViewCount:    viewCount,
		PublishedAt:  publishedAt.UTC(),
		ChannelTitle: channelTitle,
		ChannelID:    channelID,
		Link:         watchURLPrefix + id,
		ThumbnailURL: thumbnailURL,
		CategoryID:   categoryID,
		Tags:         tags,
	}, nil
}

// MatchesKeyword reports whether the keyword appears (case-insensitive)
// in the title, the description, or any tag.
func (v Video) MatchesKeyword(keyword string) bool {
	k := strings.ToLower(keyword)
	if strings.Contains(strings.ToLower(v.Title), k) {
		return true
	}
	if strings.Contains(strings.ToLower(v.Description), k) {
		return true
	}
	for _, tag := range v.Tags {
		if strings.Contains(strings.ToLower(tag), k) {
			return true
		}
	}
	return false
}

// Category is a platform video category.
type Category struct {
	ID   string
	Name string
}

// Categories is the static platform category table, ordered by ascending
// numeric id so name resolution is deterministic.
var Categories = []Category{
	{"1", "Film & Animation"},
	{"2", "Autos & Vehicles"},
	{"10", "Music"},
	{"15", "Pets & Animals"},
	{"17", "Sports"},
	{"18", "Short Movies"},
	{"19", "Travel & Events"},
	{"20", "Gaming"},
	{"21", "Videoblogging"},
	{"22", "People & Blogs"},
	{"23", "Comedy"},
	{"24", "Entertainment"},
	{"25", "News & Politics"},
	{"26", "Howto & Style"},
	{"27", "Education"},
	{"28", "Science & Technology"},
	{"29", "Nonprofits & Activism"},
	{"30", "Movies"},
	{"31", "Anime/Animation"},
	{"32", "Action/Adventure"},
	{"33", "Classics"},
	{"34", "Documentary"},
	{"35", "Drama"},
	{"36", "Family"},
	{"37", "Foreign"},
	{"38", "Horror"},
	{"39", "Sci-Fi/Fantasy"},
	{"40", "Thriller"},
	{"41", "Shorts"},
	{"42", "Shows"},
	{"43", "Trailers"},
	{"44", "Tech"},
}

// ResolveCategoryID maps a user-supplied category to a platform category
// id. Known ids pass through unchanged. Otherwise the input is matched
// case-insensitively as a substring of the category names, first match in
// id order wins. Unrecognized input is returned as-is and treated as a
// literal id by the caller.
func ResolveCategoryID(category string) string {
	for _, c := range Categories {
		if c.ID == category {
			return category
		}
	}

	needle := strings.ToLower(category)
	for _, c := range Categories {
		if strings.Contains(strings.ToLower(c.Name), needle) {
			return c.ID
		}
	}

	return category
}
