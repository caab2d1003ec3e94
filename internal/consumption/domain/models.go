package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/voltbill/internal/customer/domain"
)

// ConsumptionRecord is one meter reading for a customer.
type ConsumptionRecord struct {
	ID          snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Timestamp   time.Time    `gorm:"column:read_at;not null;uniqueIndex:ux_consumption_customer_timestamp,priority:2" json:"timestamp"`
	Consumption float64      `gorm:"column:consumption;not null" json:"consumption"`
	Price       float64      `gorm:"column:price;not null" json:"price"`
	CustomerID  string       `gorm:"column:customer_id;size:64;not null;uniqueIndex:ux_consumption_customer_timestamp,priority:1" json:"customer_id"`
	BatchID     string       `gorm:"column:batch_id;size:26" json:"batch_id,omitempty"`
	CreatedAt   time.Time    `gorm:"column:created_at;not null" json:"created_at"`

	Customer *customerdomain.Customer `gorm:"foreignKey:CustomerID;references:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (ConsumptionRecord) TableName() string { return "consumption_records" }

// BulkResult reports how a batch insert went, row by row.
type BulkResult struct {
	Inserted   int `json:"inserted"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
}
