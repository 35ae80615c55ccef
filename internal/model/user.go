package model

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// User - абонент. Type задает когорту для сравнения
type User struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	Name          string        `json:"name" db:"name"`
	Email         string        `json:"email" db:"email"`
	MSISDN        string        `json:"msisdn" db:"msisdn"`
	Type          string        `json:"type" db:"type"`
	CurrentPlanID uuid.NullUUID `json:"current_plan_id" db:"current_plan_id"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// CanReceiveAlerts проверяет, что у абонента указан корректный email
func (u *User) CanReceiveAlerts() bool {
	return emailRegex.MatchString(u.Email)
}
