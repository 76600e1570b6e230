package course

import "gorm.io/gorm"

const (
	CourseStatusDraft    = "DRAFT"
	CourseStatusActive   = "ACTIVE"
	CourseStatusInactive = "INACTIVE"
)

// Course represents a purchasable learning course
type Course struct {
	gorm.Model
	Title        string  `json:"title"`
	Slug         string  `json:"slug" gorm:"uniqueIndex;type:varchar(200)"`
	Description  string  `json:"description"`
	Author       string  `json:"author"`
	Price        float64 `json:"price" gorm:"default:0"`
	Currency     string  `json:"currency" gorm:"type:varchar(3);default:'USD'"`
	AccessDays   *int    `json:"access_days"`                   // nil means lifetime access
	Status       string  `json:"status" gorm:"default:'DRAFT'"` // DRAFT, ACTIVE, INACTIVE
	ThumbnailURL string  `json:"thumbnail_url"`
	IsPublished  bool    `json:"is_published" gorm:"default:false"`
	IsDeleted    bool    `json:"-" gorm:"default:false"`

	Modules []Module `json:"modules,omitempty" gorm:"foreignKey:CourseID"`
}

// IsFree reports whether enrolling needs no payment.
func (c *Course) IsFree() bool {
	return c.Price <= 0
}

// IsEnrollable reports whether new enrollments are accepted.
func (c *Course) IsEnrollable() bool {
	return c.IsPublished && c.Status == CourseStatusActive && !c.IsDeleted
}
