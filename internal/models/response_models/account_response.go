package response_models

import (
	"github.com/google/uuid"

	"cognipdf/internal/models/db_models"
)

type AuthResponse struct {
	ID           uuid.UUID                      `json:"id"`
	Name         string                         `json:"name"`
	Email        string                         `json:"email"`
	Token        string                         `json:"token"`
	Subscription db_models.SubscriptionSnapshot `json:"subscription"`
}

type ProfileResponse struct {
	ID           uuid.UUID                      `json:"id"`
	Name         string                         `json:"name"`
	Email        string                         `json:"email"`
	Subscription db_models.SubscriptionSnapshot `json:"subscription"`
}
