package sentiment

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Alias1177/Sentinel/models"
)

var (
	positiveKeywords = []string{
		"bullish", "surge", "soar", "rally", "gain", "rise", "grow", "positive",
		"breakthrough", "adoption", "partnership", "launch", "success", "milestone",
	}
	negativeKeywords = []string{
		"bearish", "crash", "plunge", "drop", "fall", "decline", "tumble", "negative",
		"scam", "hack", "fraud", "attack", "vulnerability", "concern", "risk", "warning",
	}

	// substring match, so "sol" also tags "solana"
	newsTags = []string{
		"solana", "sol", "nft", "defi", "blockchain", "crypto", "token", "wallet",
		"transaction", "validator", "staking", "yield", "trading", "exchange", "dex",
		"dao", "governance", "protocol", "security", "development", "update",
	}

	positivePatterns = compileWordPatterns(positiveKeywords)
	negativePatterns = compileWordPatterns(negativeKeywords)
)

func compileWordPatterns(words []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(words))
	for i, w := range words {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return patterns
}

func countMatches(text string, patterns []*regexp.Regexp) int {
	n := 0
	for _, p := range patterns {
		n += len(p.FindAllStringIndex(text, -1))
	}
	return n
}

// ClassifyText labels text by whole-word keyword counts. One side must lead
// by more than one match to leave neutral.
func ClassifyText(text string) models.NewsSentiment {
	lower := strings.ToLower(text)
	pos := countMatches(lower, positivePatterns)
	neg := countMatches(lower, negativePatterns)

	switch {
	case pos > neg+1:
		return models.NewsPositive
	case neg > pos+1:
		return models.NewsNegative
	default:
		return models.NewsNeutral
	}
}

func ExtractTags(title, content string) []string {
	combined := strings.ToLower(title + " " + content)

	tags := []string{}
	for _, tag := range newsTags {
		if strings.Contains(combined, tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}

func sourceHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Host
}

// TagNews annotates each article with its source host, tags and sentiment
func TagNews(articles []models.NewsArticle, now time.Time) models.NewsFeed {
	items := make([]models.NewsItem, 0, len(articles))
	for _, a := range articles {
		items = append(items, models.NewsItem{
			NewsArticle: a,
			Source:      sourceHost(a.URL),
			Tags:        ExtractTags(a.Title, a.Content),
			Sentiment:   ClassifyText(a.Title + " " + a.Content),
		})
	}

	return models.NewsFeed{
		News:        items,
		Total:       len(items),
		LastUpdated: now.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}
