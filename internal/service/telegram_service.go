package service

import (
	"errors"
	"fmt"
	"strings"

	"estatehub/internal/events"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// TelegramSender is the subset of *tgbotapi.BotAPI used for notifications.
type TelegramSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramService relays domain events to the staff chats.
type TelegramService struct {
	bot     TelegramSender
	chatIDs []int64
	logger  *zerolog.Logger
}

func NewTelegramService(bot TelegramSender, chatIDs []int64, logger *zerolog.Logger) *TelegramService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &TelegramService{bot: bot, chatIDs: chatIDs, logger: logger}
}

func (s *TelegramService) SendMessage(chatID int64, text string) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	return s.bot.Send(msg)
}

// Subscribe registers the notification handlers on the bus.
func (s *TelegramService) Subscribe(bus *events.EventBus) {
	for _, t := range []string{
		events.EventBookingCreated,
		events.EventBookingConfirmed,
		events.EventBookingCancelled,
		events.EventBookingCompleted,
	} {
		bus.Subscribe(t, s.onBooking)
	}
	bus.Subscribe(events.EventInquiryCreated, s.onInquiry)
	bus.Subscribe(events.EventBlogPublished, s.onBlogPublished)
}

func (s *TelegramService) onBooking(ev *events.Event) error {
	var p events.BookingEventPayload
	if err := ev.Decode(&p); err != nil {
		return fmt.Errorf("decode %s: %w", ev.Type, err)
	}
	return s.broadcast(FormatBookingNotice(ev.Type, p))
}

func (s *TelegramService) onInquiry(ev *events.Event) error {
	var p events.InquiryEventPayload
	if err := ev.Decode(&p); err != nil {
		return fmt.Errorf("decode %s: %w", ev.Type, err)
	}
	text := fmt.Sprintf("New inquiry #%d for %q from %s <%s>", p.InquiryID, p.PropertyTitle, p.Name, p.Email)
	return s.broadcast(text)
}

func (s *TelegramService) onBlogPublished(ev *events.Event) error {
	var p events.BlogEventPayload
	if err := ev.Decode(&p); err != nil {
		return fmt.Errorf("decode %s: %w", ev.Type, err)
	}
	return s.broadcast(fmt.Sprintf("Blog post published: %s (/%s)", p.Title, p.Slug))
}

// broadcast sends text to every configured chat and joins the failures.
func (s *TelegramService) broadcast(text string) error {
	var errs []error
	for _, chatID := range s.chatIDs {
		if _, err := s.SendMessage(chatID, text); err != nil {
			s.logger.Error().Err(err).Int64("chat_id", chatID).Msg("telegram send error")
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var bookingVerbs = map[string]string{
	events.EventBookingCreated:   "New booking",
	events.EventBookingConfirmed: "Booking confirmed",
	events.EventBookingCancelled: "Booking cancelled",
	events.EventBookingCompleted: "Booking completed",
}

// FormatBookingNotice renders a one-line-per-field booking summary.
func FormatBookingNotice(eventType string, p events.BookingEventPayload) string {
	verb, ok := bookingVerbs[eventType]
	if !ok {
		verb = "Booking update"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s #%d\n", verb, p.BookingID)
	room := p.RoomTypeName
	if room == "" {
		room = fmt.Sprintf("room type %d", p.RoomTypeID)
	}
	fmt.Fprintf(&b, "Room: %s\n", room)
	fmt.Fprintf(&b, "Stay: %s to %s, %d guest(s)\n", p.CheckIn, p.CheckOut, p.GuestCount)
	fmt.Fprintf(&b, "Total: %s\n", p.TotalPrice.StringFixed(2))
	fmt.Fprintf(&b, "Status: %s", p.Status)
	return b.String()
}
