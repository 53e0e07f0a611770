package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the minimal account record the recipe and feed paths need. Credentials
// live with the authentication service.
type User struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	Username  string    `gorm:"size:30;not null;uniqueIndex" json:"username"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Follow is a directed follower -> followee relation.
type Follow struct {
	FollowerID uuid.UUID `gorm:"type:varchar(36);primarykey" json:"follower_id"`
	FolloweeID uuid.UUID `gorm:"type:varchar(36);primarykey;index" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Follow) TableName() string {
	return "follows"
}
