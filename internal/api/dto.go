package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"estatehub/internal/domain"
	"estatehub/internal/models"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type tokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      *models.User `json:"user"`
}

// Self-service sign-up is limited to customer roles; staff accounts come from
// the inventory seed.
type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Phone     string `json:"phone" validate:"max=32"`
	Role      string `json:"role" validate:"omitempty,oneof=buyer seller"`
}

type bookingRequest struct {
	RoomTypeID      int64  `json:"room_type_id" validate:"required,gt=0"`
	CheckIn         string `json:"check_in_date" validate:"required,datetime=2006-01-02"`
	CheckOut        string `json:"check_out_date" validate:"required,datetime=2006-01-02"`
	GuestCount      int    `json:"guest_count"`
	SpecialRequests string `json:"special_requests" validate:"max=2000"`
}

type inquiryRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=32"`
	Message string `json:"message" validate:"required,max=5000"`
}

type blogPostRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
	Publish bool   `json:"publish"`
}

// decodeRequest reads a JSON body into dst and runs its validation tags.
// Failures wrap domain.ErrValidation.
func decodeRequest(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body", domain.ErrValidation)
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}
