package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	billdomain "github.com/smallbiznis/voltbill/internal/bill/domain"
	"gorm.io/datatypes"
)

// RowIssue records why a CSV row contributed nothing.
type RowIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// UploadBatch is the audit row written for every processed upload.
type UploadBatch struct {
	ID               string         `gorm:"primaryKey;size:26" json:"id"`
	CustomerID       string         `gorm:"column:customer_id;size:64;not null;index" json:"customer_id"`
	Filename         string         `gorm:"column:filename;not null" json:"filename"`
	Parsed           int            `gorm:"column:parsed;not null" json:"parsed"`
	Skipped          int            `gorm:"column:skipped;not null" json:"skipped"`
	Invalid          int            `gorm:"column:invalid;not null" json:"invalid"`
	Inserted         int            `gorm:"column:inserted;not null" json:"inserted"`
	Duplicates       int            `gorm:"column:duplicates;not null" json:"duplicates"`
	Failed           int            `gorm:"column:failed;not null" json:"failed"`
	TotalConsumption float64        `gorm:"column:total_consumption;not null" json:"total_consumption"`
	TotalPrice       float64        `gorm:"column:total_price;not null" json:"total_price"`
	BillOutcome      string         `gorm:"column:bill_outcome;not null" json:"bill_outcome"`
	BillID           *snowflake.ID  `gorm:"column:bill_id" json:"bill_id,omitempty"`
	Issues           datatypes.JSON `gorm:"column:issues" json:"issues,omitempty"`
	CreatedAt        time.Time      `gorm:"column:created_at;not null" json:"created_at"`
}

func (UploadBatch) TableName() string { return "upload_batches" }

// UploadResult is the typed outcome of one upload.
type UploadResult struct {
	BatchID          string             `json:"batch_id"`
	CustomerID       string             `json:"customer_id"`
	Filename         string             `json:"filename"`
	Parsed           int                `json:"parsed"`
	Skipped          int                `json:"skipped"`
	Invalid          int                `json:"invalid"`
	Inserted         int                `json:"inserted"`
	Duplicates       int                `json:"duplicates"`
	Failed           int                `json:"failed"`
	TotalConsumption float64            `json:"total_consumption"`
	TotalPrice       float64            `json:"total_price"`
	BillingMonth     string             `json:"billing_month"`
	BillOutcome      billdomain.Outcome `json:"bill_outcome"`
	Bill             *billdomain.Bill   `json:"bill,omitempty"`
	Issues           []RowIssue         `json:"issues"`
}
