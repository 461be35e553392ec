// Package notify sends best-effort operational notifications to a
// Telegram chat watched by the marketplace admins. Telegram is
// optional wiring: with no token configured every call is a no-op,
// and send failures are logged, never propagated into request flow.
package notify

import (
    "fmt"
    "log"

    tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier wraps a Telegram bot bound to a single admin chat.
type Notifier struct {
    bot    *tgbotapi.BotAPI
    chatID int64
}

// New builds a Notifier. An empty token or zero chat id disables
// notifications and returns a nil Notifier, which all methods accept.
func New(token string, chatID int64) *Notifier {
    if token == "" || chatID == 0 {
        return nil
    }
    bot, err := tgbotapi.NewBotAPI(token)
    if err != nil {
        log.Printf("notify: telegram init failed, notifications disabled: %v", err)
        return nil
    }
    log.Printf("notify: telegram authorized as %s", bot.Self.UserName)
    return &Notifier{bot: bot, chatID: chatID}
}

// BookingConfirmed announces a freshly created booking.
func (n *Notifier) BookingConfirmed(bookingID uint64, vehicle, start, end string, totalCents uint32) {
    n.send(fmt.Sprintf("Booking #%d confirmed: %s, %s to %s, total %.2f",
        bookingID, vehicle, start, end, float64(totalCents)/100.0))
}

// ListingSubmitted announces a listing entering the moderation queue.
func (n *Notifier) ListingSubmitted(listingID uint64, vehicle, location string) {
    n.send(fmt.Sprintf("Listing #%d awaiting review: %s in %s", listingID, vehicle, location))
}

func (n *Notifier) send(text string) {
    if n == nil {
        return
    }
    msg := tgbotapi.NewMessage(n.chatID, text)
    if _, err := n.bot.Send(msg); err != nil {
        log.Printf("notify: telegram send failed: %v", err)
    }
}
