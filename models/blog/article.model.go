package blog

import (
	"regexp"
	"strings"
	"time"

	"academy/models"
	"academy/models/subscription"

	"gorm.io/gorm"
)

const wordsPerMinute = 200

var (
	htmlTag     = regexp.MustCompile(`<[^>]+>`)
	markdownSym = regexp.MustCompile("[#*_`\\[\\]()]")
)

// ArticleCategory groups articles
type ArticleCategory struct {
	gorm.Model
	Name        string `json:"name" gorm:"uniqueIndex;type:varchar(100);not null"`
	Slug        string `json:"slug" gorm:"uniqueIndex;type:varchar(100);not null"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" gorm:"default:0"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`
}

// Article is a blog post that may be reserved for subscribers
type Article struct {
	gorm.Model
	Title       string     `json:"title" gorm:"not null"`
	Slug        string     `json:"slug" gorm:"uniqueIndex;type:varchar(200);not null"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content,omitempty" gorm:"type:text;not null"`
	CategoryID  *uint      `json:"category_id" gorm:"index"`
	AuthorID    *uint      `json:"author_id"`
	Tags        string     `json:"tags"`
	IsPremium   bool       `json:"is_premium" gorm:"default:false"`
	Published   bool       `json:"published" gorm:"default:false;index"`
	PublishedAt *time.Time `json:"published_at"`
	ViewsCount  int        `json:"views_count" gorm:"default:0"`
	WordCount   int        `json:"word_count" gorm:"default:0"`
	ReadingTime int        `json:"reading_time" gorm:"default:1"` // minutes

	Category *ArticleCategory `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
}

// BeforeSave keeps the reading metrics in step with the content.
func (a *Article) BeforeSave(tx *gorm.DB) error {
	a.CalculateReadingTime()
	return nil
}

// CalculateReadingTime counts words with markup stripped, at 200 words per minute.
func (a *Article) CalculateReadingTime() int {
	clean := htmlTag.ReplaceAllString(a.Content, "")
	clean = markdownSym.ReplaceAllString(clean, "")
	a.WordCount = len(strings.Fields(clean))
	a.ReadingTime = max(1, a.WordCount/wordsPerMinute)
	return a.ReadingTime
}

// TagList splits the comma separated tags.
func (a *Article) TagList() []string {
	if strings.TrimSpace(a.Tags) == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(a.Tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// CanAccess decides whether user may read the article: free articles are
// public, premium ones need an admin or a premium or trial subscription.
func (a *Article) CanAccess(user *models.User, sub *subscription.Subscription, now time.Time) bool {
	if !a.IsPremium {
		return true
	}
	if user == nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	return sub != nil && sub.HasPremiumAccess(now)
}

// Teaser is the part of a premium article shown to readers without access.
func (a *Article) Teaser() string {
	if a.Summary != "" {
		return a.Summary
	}
	words := strings.Fields(htmlTag.ReplaceAllString(a.Content, ""))
	if len(words) > 60 {
		words = words[:60]
	}
	return strings.Join(words, " ")
}
