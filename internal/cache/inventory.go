package cache

import (
	"fmt"
	"net/url"
	"time"
)

// Key families, also used as metric labels.
const (
	FamilyPosts    = "posts"
	FamilySearch   = "search"
	FamilyTrending = "trending"
	FamilyTags     = "tags"
	FamilyActivity = "activity"
)

const (
	PostsPageKeyFormat = "posts:page=%d:size=%d:tag=%s"
	SearchKeyFormat    = "search:q=%s:page=%d:size=%d"
	TrendingKey        = "trending_stories"
	TagsKey            = "all_tags"
	RecentActivityKey  = "recent_activities"
)

const (
	PostsPageTTL      = 60 * time.Second
	SearchTTL         = 300 * time.Second
	TrendingTTL       = 300 * time.Second
	TagsTTL           = 3600 * time.Second
	RecentActivityTTL = 60 * time.Second
)

// PostsPageKey identifies one page of the listing; an empty tag means unfiltered.
func PostsPageKey(page, size int, tag string) string {
	return fmt.Sprintf(PostsPageKeyFormat, page, size, url.QueryEscape(tag))
}

// SearchKey identifies one page of search results for the normalised query.
func SearchKey(query string, page, size int) string {
	return fmt.Sprintf(SearchKeyFormat, url.QueryEscape(query), page, size)
}
