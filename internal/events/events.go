package events

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"estatehub/internal/models"

	"github.com/shopspring/decimal"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventBookingCompleted = "booking_completed"
	EventInquiryCreated   = "inquiry_created"
	EventBlogPublished    = "blog_post_published"
)

// BookingEventPayload is the booking snapshot handed to event consumers.
type BookingEventPayload struct {
	BookingID    int64           `json:"booking_id"`
	UserID       int64           `json:"user_id"`
	RoomTypeID   int64           `json:"room_type_id"`
	RoomTypeName string          `json:"room_type_name,omitempty"`
	HotelID      int64           `json:"hotel_id,omitempty"`
	Status       string          `json:"status"`
	CheckIn      string          `json:"check_in_date"`
	CheckOut     string          `json:"check_out_date"`
	GuestCount   int             `json:"guest_count"`
	TotalPrice   decimal.Decimal `json:"total_price"`
	ChangedByID  int64           `json:"changed_by_id,omitempty"`
}

// NewBookingPayload snapshots a booking for publishing.
func NewBookingPayload(b *models.Booking, changedBy int64) BookingEventPayload {
	return BookingEventPayload{
		BookingID:    b.ID,
		UserID:       b.UserID,
		RoomTypeID:   b.RoomTypeID,
		RoomTypeName: b.RoomTypeName,
		HotelID:      b.HotelID,
		Status:       b.Status,
		CheckIn:      b.CheckIn.Format(models.DateLayout),
		CheckOut:     b.CheckOut.Format(models.DateLayout),
		GuestCount:   b.GuestCount,
		TotalPrice:   b.TotalPrice,
		ChangedByID:  changedBy,
	}
}

// InquiryEventPayload announces a new property inquiry to the listing owner.
type InquiryEventPayload struct {
	InquiryID     int64  `json:"inquiry_id"`
	PropertyID    int64  `json:"property_id"`
	PropertyTitle string `json:"property_title"`
	OwnerID       int64  `json:"owner_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

type BlogEventPayload struct {
	PostID   int64  `json:"post_id"`
	Title    string `json:"title"`
	Slug     string `json:"slug"`
	AuthorID int64  `json:"author_id"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish runs every subscriber of the event type synchronously. All handlers
// run even when some fail; their errors are joined.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
}
