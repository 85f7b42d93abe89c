package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Metric event types reported by upstream product APIs
const (
	EventUserCreated           = "user_created"
	EventDownloadStarted       = "download_started"
	EventSubscriptionActivated = "subscription_activated"
)

// EventTypes lists every valid metric event type
var EventTypes = []string{
	EventUserCreated,
	EventDownloadStarted,
	EventSubscriptionActivated,
}

// Metric represents a single reported occurrence pulled from an upstream
// product API. (FromProduct, SourceID) is unique and serves as the dedup
// key across sync runs.
type Metric struct {
	ID          uint64    `gorm:"primaryKey" json:"id"`
	SourceID    string    `gorm:"type:varchar(255);uniqueIndex:idx_metrics_product_source,priority:2" json:"source_id" validate:"required"`
	EventType   string    `gorm:"type:varchar(32);index" json:"event_type" validate:"required,oneof=user_created download_started subscription_activated"`
	OriginLat   float64   `gorm:"type:decimal(7,4)" json:"origin_lat" validate:"min=-90,max=90"`
	OriginLong  float64   `gorm:"type:decimal(7,4)" json:"origin_long" validate:"min=-180,max=180"`
	CityCode    string    `gorm:"type:varchar(3)" json:"city_code" validate:"required,len=3"`
	CountryCode string    `gorm:"type:varchar(3)" json:"country_code" validate:"required,len=3"`
	FromProduct uint64    `gorm:"uniqueIndex:idx_metrics_product_source,priority:1;index" json:"from_product"`
	Product     Product   `gorm:"foreignKey:FromProduct" json:"-"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the Metric model
func (Metric) TableName() string {
	return "stratus_metrics"
}

// Validate checks the metric fields against their validate tags
func (m *Metric) Validate() error {
	v := validator.New()
	return v.Struct(m)
}

// Signature builds the content key used to detect duplicates when the
// upstream supplied no stable identifier.
func (m *Metric) Signature() string {
	return fmt.Sprintf("%s|%.4f|%.4f|%s|%s", m.EventType, m.OriginLat, m.OriginLong, m.CityCode, m.CountryCode)
}

// EventTotals holds the per-event-type counters shown on the site
type EventTotals struct {
	UserCreatedTotal           int64 `json:"user_created_total"`
	DownloadStartedTotal       int64 `json:"download_started_total"`
	SubscriptionActivatedTotal int64 `json:"subscription_activated_total"`
}
