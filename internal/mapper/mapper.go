package mapper

import (
	"time"

	"github.com/epic-events/crm-api/internal/domain"
)

const timeFormat = "2006-01-02T15:04:05Z"

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// ToUserDTO converts User to UserDTO. The password hash never leaves the
// service layer.
func ToUserDTO(user *domain.User) domain.UserDTO {
	return domain.UserDTO{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Role:      user.Role,
		CreatedAt: fmtTime(user.CreatedAt),
		UpdatedAt: fmtTime(user.UpdatedAt),
	}
}

// ToClientDTO converts Client to ClientDTO
func ToClientDTO(client *domain.Client) domain.ClientDTO {
	dto := domain.ClientDTO{
		ID:          client.ID,
		FirstName:   client.FirstName,
		LastName:    client.LastName,
		Email:       client.Email,
		Phone:       client.Phone,
		Mobile:      client.Mobile,
		CompanyName: client.CompanyName,
		Status:      client.Status,
		StatusLabel: client.Status.String(),
		CreatedAt:   fmtTime(client.CreatedAt),
		UpdatedAt:   fmtTime(client.UpdatedAt),
	}
	if client.SalesContact != nil {
		dto.SalesContact = client.SalesContact.Username
	}
	return dto
}

// ToContractDTO converts Contract to ContractDTO
func ToContractDTO(contract *domain.Contract) domain.ContractDTO {
	dto := domain.ContractDTO{
		ID:         contract.ID,
		Title:      contract.Title,
		Signed:     contract.Signed,
		Amount:     contract.Amount,
		PaymentDue: contract.PaymentDue,
		CreatedAt:  fmtTime(contract.CreatedAt),
		UpdatedAt:  fmtTime(contract.UpdatedAt),
	}
	if contract.SalesContact != nil {
		dto.SalesContact = contract.SalesContact.Username
	}
	if contract.Client != nil {
		dto.Client = contract.Client.FullName()
	}
	return dto
}

// ToEventDTO converts Event to EventDTO
func ToEventDTO(event *domain.Event) domain.EventDTO {
	dto := domain.EventDTO{
		ID:        event.ID,
		Title:     event.Title,
		Status:    event.Status,
		Attendees: event.Attendees,
		EventDate: fmtTime(event.EventDate),
		Notes:     event.Notes,
		CreatedAt: fmtTime(event.CreatedAt),
		UpdatedAt: fmtTime(event.UpdatedAt),
	}
	if event.SupportContact != nil {
		dto.SupportContact = event.SupportContact.Username
	}
	if event.Contract != nil {
		dto.Contract = event.Contract.Title
	}
	return dto
}
