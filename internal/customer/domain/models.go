package domain

import "time"

type Customer struct {
	CustomerID string    `gorm:"column:customer_id;primaryKey;size:64" json:"customer_id"`
	Name       *string   `gorm:"column:name" json:"name"`
	Email      string    `gorm:"column:email;not null" json:"email"`
	CreatedAt  time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Customer) TableName() string { return "customers" }

// DisplayName returns the name or an empty string when unset.
func (c Customer) DisplayName() string {
	if c.Name == nil {
		return ""
	}
	return *c.Name
}
