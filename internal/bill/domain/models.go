package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/smallbiznis/voltbill/internal/customer/domain"
)

// Bill is the monthly charge derived from one upload batch.
type Bill struct {
	ID                 snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CustomerID         string       `gorm:"column:customer_id;size:64;not null;uniqueIndex:ux_bills_customer_month,priority:1" json:"customer_id"`
	Name               *string      `gorm:"column:name" json:"name"`
	Email              string       `gorm:"column:email;not null" json:"email"`
	BillingMonth       time.Time    `gorm:"column:billing_month;not null;uniqueIndex:ux_bills_customer_month,priority:2" json:"billing_month"`
	BillingValue       float64      `gorm:"column:billing_value;not null" json:"billing_value"`
	BillingConsumption float64      `gorm:"column:billing_consumption;not null" json:"billing_consumption"`
	BatchID            string       `gorm:"column:batch_id;size:26" json:"batch_id,omitempty"`
	CreatedAt          time.Time    `gorm:"column:created_at;not null" json:"created_at"`

	Customer *customerdomain.Customer `gorm:"foreignKey:CustomerID;references:CustomerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"-"`
}

func (Bill) TableName() string { return "bills" }

// MonthKey formats the billing month as YYYY-MM.
func (b Bill) MonthKey() string {
	return b.BillingMonth.UTC().Format("2006-01")
}

// BillingMonthOf returns the first day of t's calendar month, read in t's
// own location, as midnight UTC.
func BillingMonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

type Outcome string

const (
	OutcomeCreated          Outcome = "created"
	OutcomeAlreadyExists    Outcome = "already_exists"
	OutcomeCustomerNotFound Outcome = "customer_not_found"
)
