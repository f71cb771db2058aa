package ws

import (
	"time"

	"github.com/gabrielmellace1/portfolioManager-sub000/internal/domain"
)

// Server-to-client message types. System messages use the severity itself
// as the type ("info", "warning", "error").
const (
	TypePriceUpdate = "price_update"
	TypePong        = "pong"
)

// Client-to-server control events
const (
	EventSubscribePrices   = "subscribe_prices"
	EventUnsubscribePrices = "unsubscribe_prices"
	EventPing              = "ping"
)

type priceUpdateMessage struct {
	Type      string               `json:"type"`
	Timestamp time.Time            `json:"timestamp"`
	Data      []domain.PriceUpdate `json:"data"`
}

type systemMessage struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type pongMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type controlMessage struct {
	Type string `json:"type"`
}
