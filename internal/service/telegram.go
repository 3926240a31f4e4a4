package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"futures-trading-binance/internal/model"
)

// TelegramService posts order events to the Telegram bot API. It stays
// disabled while the token or chat id is missing, and sends are
// fire-and-forget: a failed notification is logged, never surfaced.
type TelegramService struct {
	token   string
	chatID  string
	baseURL string
	log     *slog.Logger
	client  *http.Client
}

func NewTelegramService(token, chatID string, log *slog.Logger) *TelegramService {
	return &TelegramService{
		token:   token,
		chatID:  chatID,
		baseURL: "https://api.telegram.org",
		log:     log,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *TelegramService) Enabled() bool {
	return s.token != "" && s.chatID != ""
}

func (s *TelegramService) OrderPlaced(order model.Order) {
	msg := fmt.Sprintf(
		"🤖 Futures Trading - %s\n"+
			"🆔 Order: %d\n"+
			"📊 %s %s\n"+
			"📦 Qty: %s\n"+
			"💲 Price: %s\n"+
			"📅 %s",
		order.Symbol,
		order.ID,
		order.Side,
		order.Type,
		order.OrigQty.String(),
		order.Price.String(),
		time.Now().Format("02/01/2006, 15:04:05"),
	)
	s.SendMessage(msg)
}

func (s *TelegramService) OrderCanceled(symbol string, orderID int64) {
	msg := fmt.Sprintf(
		"🤖 Futures Trading - %s\n"+
			"❌ Order %d cancelled\n"+
			"📅 %s",
		symbol,
		orderID,
		time.Now().Format("02/01/2006, 15:04:05"),
	)
	s.SendMessage(msg)
}

// SendMessage posts text asynchronously so order placement never blocks on
// the notification round trip.
func (s *TelegramService) SendMessage(text string) {
	if !s.Enabled() {
		return
	}
	go func() {
		if err := s.send(text); err != nil {
			s.log.Error("failed to send telegram message", "error", err)
		}
	}()
}

func (s *TelegramService) send(text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)
	payload := map[string]string{
		"chat_id": s.chatID,
		"text":    text,
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonPayload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram api error: %s", resp.Status)
	}
	return nil
}
