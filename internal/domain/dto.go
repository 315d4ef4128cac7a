package domain

import (
	"time"

	"github.com/google/uuid"
)

// Entity references in request payloads use natural keys (usernames, client
// name pairs, contract titles); the service layer resolves them to ids.

// LoginRequest carries credentials for token issuance
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	Token     string  `json:"token"`
	ExpiresAt string  `json:"expiresAt"` // ISO 8601
	User      UserDTO `json:"user"`
}

type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt string    `json:"createdAt"` // ISO 8601
	UpdatedAt string    `json:"updatedAt"` // ISO 8601
}

type CreateUserRequest struct {
	Username  string `json:"username" validate:"required,max=50"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required,max=25"`
	LastName  string `json:"lastName" validate:"required,max=25"`
	Email     string `json:"email" validate:"required,email,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=17"`
	Role      Role   `json:"role" validate:"required,oneof=manager sales support"`
}

// UpdateUserRequest is a partial update; empty fields are left untouched.
// Role is only honored when the acting user is a manager.
type UpdateUserRequest struct {
	Password  string `json:"password" validate:"omitempty,min=8"`
	FirstName string `json:"firstName" validate:"omitempty,max=25"`
	LastName  string `json:"lastName" validate:"omitempty,max=25"`
	Email     string `json:"email" validate:"omitempty,email,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=17"`
	Role      Role   `json:"role" validate:"omitempty,oneof=manager sales support"`
}

type ClientDTO struct {
	ID           uuid.UUID    `json:"id"`
	FirstName    string       `json:"firstName"`
	LastName     string       `json:"lastName"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone,omitempty"`
	Mobile       string       `json:"mobile,omitempty"`
	CompanyName  string       `json:"companyName,omitempty"`
	Status       ClientStatus `json:"status"`
	StatusLabel  string       `json:"statusLabel"`
	SalesContact string       `json:"salesContact,omitempty"` // username
	CreatedAt    string       `json:"createdAt"`              // ISO 8601
	UpdatedAt    string       `json:"updatedAt"`              // ISO 8601
}

type CreateClientRequest struct {
	FirstName    string `json:"firstName" validate:"required,max=25"`
	LastName     string `json:"lastName" validate:"required,max=25"`
	Email        string `json:"email" validate:"required,email,max=100"`
	Phone        string `json:"phone" validate:"omitempty,max=20"`
	Mobile       string `json:"mobile" validate:"omitempty,max=20"`
	CompanyName  string `json:"companyName" validate:"omitempty,max=250"`
	SalesContact string `json:"salesContact" validate:"required,max=50"` // username
}

type UpdateClientRequest struct {
	Email        string `json:"email" validate:"omitempty,email,max=100"`
	Phone        string `json:"phone" validate:"omitempty,max=20"`
	Mobile       string `json:"mobile" validate:"omitempty,max=20"`
	CompanyName  string `json:"companyName" validate:"omitempty,max=250"`
	SalesContact string `json:"salesContact" validate:"omitempty,max=50"` // username
}

type ContractDTO struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Signed       bool      `json:"signed"`
	Amount       float64   `json:"amount"`
	PaymentDue   float64   `json:"paymentDue"`
	SalesContact string    `json:"salesContact,omitempty"` // username
	Client       string    `json:"client"`                 // "First Last"
	CreatedAt    string    `json:"createdAt"`              // ISO 8601
	UpdatedAt    string    `json:"updatedAt"`              // ISO 8601
}

type CreateContractRequest struct {
	Title        string  `json:"title" validate:"required,max=50"`
	Signed       bool    `json:"signed"`
	Amount       float64 `json:"amount" validate:"gte=0"`
	PaymentDue   float64 `json:"paymentDue" validate:"gte=0"`
	SalesContact string  `json:"salesContact" validate:"required,max=50"` // username
	Client       string  `json:"client" validate:"required,max=51"`       // "First Last"
}

type UpdateContractRequest struct {
	Signed       *bool    `json:"signed"`
	Amount       *float64 `json:"amount" validate:"omitempty,gte=0"`
	PaymentDue   *float64 `json:"paymentDue" validate:"omitempty,gte=0"`
	SalesContact string   `json:"salesContact" validate:"omitempty,max=50"` // username
}

type EventDTO struct {
	ID             uuid.UUID `json:"id"`
	Title          string    `json:"title"`
	Status         bool      `json:"status"` // true once the event has occurred
	Attendees      int       `json:"attendees"`
	EventDate      string    `json:"eventDate"` // ISO 8601
	Notes          string    `json:"notes,omitempty"`
	SupportContact string    `json:"supportContact,omitempty"` // username
	Contract       string    `json:"contract"`                 // title
	CreatedAt      string    `json:"createdAt"`                // ISO 8601
	UpdatedAt      string    `json:"updatedAt"`                // ISO 8601
}

type CreateEventRequest struct {
	Title          string    `json:"title" validate:"required,max=50"`
	Attendees      int       `json:"attendees" validate:"gte=0"`
	EventDate      time.Time `json:"eventDate" validate:"required"`
	Notes          string    `json:"notes"`
	SupportContact string    `json:"supportContact" validate:"omitempty,max=50"` // username
	Contract       string    `json:"contract" validate:"required,max=50"`        // title
}

type UpdateEventRequest struct {
	Attendees      *int       `json:"attendees" validate:"omitempty,gte=0"`
	EventDate      *time.Time `json:"eventDate"`
	Notes          *string    `json:"notes"`
	SupportContact string     `json:"supportContact" validate:"omitempty,max=50"` // username
}

// PaginatedResponse wraps list results
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}
