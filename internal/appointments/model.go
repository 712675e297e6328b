package appointments

import (
	"time"

	"github.com/google/uuid"
)

// Fallback display values substituted for absent optional fields at
// construction time. A validated appointment never carries empty fields.
const (
	FallbackNotProvided  = "Not provided"
	FallbackNotSpecified = "Not specified"
	FallbackNone         = "None"
)

// Appointment is the canonical record of one booking request. It is
// immutable once constructed.
type Appointment struct {
	ID              string    `json:"id"`
	ParentName      string    `json:"parentName"`
	Email           string    `json:"email"`
	Phone           string    `json:"phone"`
	ChildName       string    `json:"childName"`
	ChildAge        string    `json:"childAge"`
	ServiceType     string    `json:"serviceType"`
	PreferredDate   string    `json:"preferredDate"`
	PreferredTime   string    `json:"preferredTime"`
	AdditionalNotes string    `json:"additionalNotes"`
	CreatedAt       time.Time `json:"createdAt"`
}

// BookingRequest is the raw form payload. The legacy form posted the phone
// under both "phone" and "phoneNumber", so both are accepted.
type BookingRequest struct {
	ParentName      string `json:"parentName" validate:"required"`
	Email           string `json:"email" validate:"required"`
	Phone           string `json:"phone"`
	PhoneNumber     string `json:"phoneNumber"`
	ChildName       string `json:"childName" validate:"required"`
	ChildAge        string `json:"childAge"`
	ServiceType     string `json:"serviceType" validate:"required"`
	PreferredDate   string `json:"preferredDate"`
	PreferredTime   string `json:"preferredTime"`
	AdditionalNotes string `json:"additionalNotes"`
}

// NewAppointment builds the canonical record from a validated request,
// generating the id and createdAt and substituting fallback display values.
func NewAppointment(req *BookingRequest) *Appointment {
	phone := req.Phone
	if phone == "" {
		phone = req.PhoneNumber
	}
	return &Appointment{
		ID:              uuid.NewString(),
		ParentName:      req.ParentName,
		Email:           req.Email,
		Phone:           orFallback(phone, FallbackNotProvided),
		ChildName:       req.ChildName,
		ChildAge:        orFallback(req.ChildAge, FallbackNotSpecified),
		ServiceType:     req.ServiceType,
		PreferredDate:   orFallback(req.PreferredDate, FallbackNotSpecified),
		PreferredTime:   orFallback(req.PreferredTime, FallbackNotSpecified),
		AdditionalNotes: orFallback(req.AdditionalNotes, FallbackNone),
		CreatedAt:       time.Now().UTC(),
	}
}

func orFallback(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
