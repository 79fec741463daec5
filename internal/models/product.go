package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a donate-able item in the catalog. The owner is the user
// who listed it; the receiver is assigned by the matching workflow outside
// this service and is only read here.
type Product struct {
	ID           string     `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name         string     `json:"name" gorm:"type:varchar(100)" validate:"required,max=100"`
	Description  string     `json:"description" gorm:"type:varchar(500)" validate:"required,max=500"`
	Condition    string     `json:"condition" gorm:"type:varchar(100)"`
	PurchasedAt  *time.Time `json:"purchased_at"`
	Images       []string   `json:"images" gorm:"serializer:json"`
	Available    bool       `json:"available"`
	OwnerID      string     `json:"owner_id" gorm:"type:varchar(36);index"`
	Owner        *User      `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	ReceiverID   *string    `json:"receiver_id,omitempty" gorm:"type:varchar(36);index"`
	Receiver     *User      `json:"receiver,omitempty" gorm:"foreignKey:ReceiverID"`
	ScheduleDate *time.Time `json:"schedule_date,omitempty"`
	DonatedAt    *time.Time `json:"donated_at,omitempty"`
	gorm.Model              // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// ProductInput carries the caller-supplied fields for create and update.
// Uploaded attachments are reduced to filenames by the transport layer before
// this struct reaches the service; Images is always the final desired list.
type ProductInput struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Condition   string     `json:"condition"`
	PurchasedAt *time.Time `json:"purchased_at"`
	Images      []string   `json:"images"`
	Available   bool       `json:"available"`
	DonatedAt   *time.Time `json:"donated_at,omitempty"`
}
