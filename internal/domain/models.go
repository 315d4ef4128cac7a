package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// BeforeCreate assigns an id when the caller did not provide one.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Role is the team a user belongs to. Every permission decision in the
// policy package is keyed on this closed set.
type Role string

const (
	RoleManager Role = "manager"
	RoleSales   Role = "sales"
	RoleSupport Role = "support"
)

// IsValid checks if the Role is a valid enum value
func (r Role) IsValid() bool {
	switch r {
	case RoleManager, RoleSales, RoleSupport:
		return true
	}
	return false
}

// EntityKind identifies one of the four persisted entity types.
type EntityKind string

const (
	KindUser     EntityKind = "user"
	KindClient   EntityKind = "client"
	KindContract EntityKind = "contract"
	KindEvent    EntityKind = "event"
)

// ClientStatus is the lifecycle stage of a client. The numeric values are
// ordered: the stage only ever moves upward (see status.NextClientStatus).
type ClientStatus int

const (
	ClientStatusPotential     ClientStatus = 1
	ClientStatusUpcomingEvent ClientStatus = 2
	ClientStatusPastEvent     ClientStatus = 3
)

// String returns the display name of the client status
func (s ClientStatus) String() string {
	switch s {
	case ClientStatusPotential:
		return "potential"
	case ClientStatusUpcomingEvent:
		return "upcoming_event"
	case ClientStatusPastEvent:
		return "past_event"
	}
	return "unknown"
}

// User represents a team member with access to the CRM
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(50);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(100);not null;column:password_hash"`
	FirstName    string `gorm:"type:varchar(25);not null;column:first_name"`
	LastName     string `gorm:"type:varchar(25);not null;column:last_name"`
	Email        string `gorm:"type:varchar(100);not null"`
	Phone        string `gorm:"type:varchar(17)"`
	Role         Role   `gorm:"type:varchar(20);not null;index"`
}

// FullName returns the user's full name
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Client represents a customer in the CRM. The (first_name, last_name) pair
// is the natural key used at the API boundary, so neither name may contain
// whitespace.
type Client struct {
	BaseModel
	FirstName      string       `gorm:"type:varchar(25);not null;uniqueIndex:idx_clients_full_name;column:first_name"`
	LastName       string       `gorm:"type:varchar(25);not null;uniqueIndex:idx_clients_full_name;column:last_name"`
	Email          string       `gorm:"type:varchar(100);not null"`
	Phone          string       `gorm:"type:varchar(20)"`
	Mobile         string       `gorm:"type:varchar(20)"`
	CompanyName    string       `gorm:"type:varchar(250);column:company_name"`
	Status         ClientStatus `gorm:"type:smallint;not null;default:1;index"`
	SalesContactID *uuid.UUID   `gorm:"type:uuid;index;column:sales_contact_id"`
	SalesContact   *User        `gorm:"foreignKey:SalesContactID"`
	Contracts      []Contract   `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE"`
}

// FullName returns the client's natural key form "First Last"
func (c *Client) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Contract represents a signed or pending agreement with a client. The title
// is unique and URL-safe (spaces normalized to underscores by the validation
// package).
type Contract struct {
	BaseModel
	Title          string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Signed         bool       `gorm:"not null;default:false"`
	Amount         float64    `gorm:"type:decimal(15,2);not null"`
	PaymentDue     float64    `gorm:"type:decimal(15,2);not null;column:payment_due"`
	SalesContactID *uuid.UUID `gorm:"type:uuid;index;column:sales_contact_id"`
	SalesContact   *User      `gorm:"foreignKey:SalesContactID"`
	ClientID       uuid.UUID  `gorm:"type:uuid;not null;index;column:client_id"`
	Client         *Client    `gorm:"foreignKey:ClientID"`
	Events         []Event    `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
}

// Event represents a planned or past event tied to a contract. Status is
// derived: true once event_date has passed. It is recomputed on every save
// and by the periodic sweep job, never accepted from a caller.
type Event struct {
	BaseModel
	Title            string     `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status           bool       `gorm:"not null;default:false;index"`
	Attendees        int        `gorm:"not null;default:0"`
	EventDate        time.Time  `gorm:"not null;column:event_date;index"`
	Notes            string     `gorm:"type:text"`
	SupportContactID *uuid.UUID `gorm:"type:uuid;index;column:support_contact_id"`
	SupportContact   *User      `gorm:"foreignKey:SupportContactID"`
	ContractID       uuid.UUID  `gorm:"type:uuid;not null;index;column:contract_id"`
	Contract         *Contract  `gorm:"foreignKey:ContractID"`
}
