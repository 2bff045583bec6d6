package domain

import (
	"time"

	"github.com/google/uuid"
)

type Article struct {
	ID                 uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Title              string     `json:"title" gorm:"type:text;not null"`
	Slug               string     `json:"slug" gorm:"type:text;not null;default:''"`
	Content            string     `json:"content" gorm:"type:text;not null;default:''"`
	Status             string     `json:"status" gorm:"type:text;not null;default:'draft'"`
	ScheduledPublishAt *time.Time `json:"scheduled_publish_at,omitempty"`
	PublishedAt        *time.Time `json:"published_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Article) TableName() string { return "articles" }

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)
