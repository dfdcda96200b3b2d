package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/flowyn/flowyn-core/internal/enum"
	"github.com/flowyn/flowyn-core/internal/utils"
)

// Linked service names stored on Account.LinkedServices.
const (
	ServiceCalendar = "calendar"
	ServiceContacts = "contacts"
	ServiceChat     = "chat"
)

// Account is a linked mailbox identity. The normalized email address is the
// uniqueness key; the id is a stable random handle.
type Account struct {
	ID           string               `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	EmailAddress string               `gorm:"column:email_address;type:varchar(255);uniqueIndex;not null" json:"email"`
	DisplayName  string               `gorm:"column:display_name;type:varchar(255)" json:"name"`
	Provider     enum.AccountProvider `gorm:"column:provider;type:varchar(50);index;not null" json:"type"`
	Protocol     enum.AuthProtocol    `gorm:"column:protocol;type:varchar(50)" json:"protocol"`
	Color        string               `gorm:"column:color;type:varchar(20)" json:"color"`
	Avatar       string               `gorm:"column:avatar;type:varchar(500)" json:"avatar,omitempty"`
	// Server settings captured by the manual linking path. Unused for OAuth providers.
	IncomingHost string                 `gorm:"column:incoming_host;type:varchar(255)" json:"incomingHost,omitempty"`
	IncomingPort int                    `gorm:"column:incoming_port" json:"incomingPort,omitempty"`
	OutgoingHost string                 `gorm:"column:outgoing_host;type:varchar(255)" json:"outgoingHost,omitempty"`
	OutgoingPort int                    `gorm:"column:outgoing_port" json:"outgoingPort,omitempty"`
	Security     enum.TransportSecurity `gorm:"column:security;type:varchar(20)" json:"security,omitempty"`
	// Status information
	Status         enum.ConnectionStatus `gorm:"column:status;type:varchar(50);index" json:"status"`
	ErrorMessage   string                `gorm:"column:error_message;type:text" json:"errorMessage,omitempty"`
	LastSynced     *time.Time            `gorm:"column:last_synced;type:timestamp" json:"lastSynced,omitempty"`
	LinkedServices pq.StringArray        `gorm:"column:linked_services;type:text[]" json:"linkedServices"`
	// Standard timestamps
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = utils.GenerateAccountID()
	}
	a.EmailAddress = utils.NormalizeEmailAddress(a.EmailAddress)
	return nil
}

func (a *Account) HasService(service string) bool {
	return utils.IsStringInSlice(service, a.LinkedServices)
}
