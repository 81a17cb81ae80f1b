package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// BinanceStream implements the StreamSource interface over the Binance
// combined miniTicker websocket. It serves crypto-segment currency codes: a
// code like "BTC" is subscribed as the BTCUSDT pair, and the inverted close
// price is pushed as the code's units-per-USD base rate.
type BinanceStream struct {
	logger *slog.Logger
}

// NewBinanceStream creates a new BinanceStream.
func NewBinanceStream(logger *slog.Logger) *BinanceStream {
	return &BinanceStream{logger: logger}
}

func (b *BinanceStream) GetName() string {
	return "binance"
}

// StartStream connects to the Binance websocket and pushes rate updates for
// the given codes until ctx is cancelled. Connection failures trigger a
// reconnect with capped exponential backoff.
func (b *BinanceStream) StartStream(ctx context.Context, updates chan<- RateUpdate, codes []string) error {
	if len(codes) == 0 {
		return fmt.Errorf("binance stream: no codes to subscribe")
	}
	streams := make([]string, len(codes))
	for i, code := range codes {
		streams[i] = strings.ToLower(code) + "usdt@miniTicker"
	}
	wsURL := "wss://stream.binance.com:9443/stream?streams=" + strings.Join(streams, "/")

	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			b.logger.Info("binance stream: context cancelled, shutting down")
			return nil
		default:
		}

		b.logger.Info("binance stream: connecting", "codes", codes, "backoff", backoff)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
		if err != nil {
			b.logger.Error("binance stream: connection failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(backoff):
				backoff *= 2
				if backoff > 16*time.Second {
					backoff = 16 * time.Second
				}
			}
			continue
		}

		// Reset backoff on successful connection.
		backoff = time.Second
		b.logger.Info("binance stream: connected")

		b.readLoop(ctx, conn, updates)
		conn.Close()
		if ctx.Err() != nil {
			return nil
		}
	}
}

// readLoop consumes ticker messages until the connection breaks or ctx is
// cancelled.
func (b *BinanceStream) readLoop(ctx context.Context, conn *websocket.Conn, updates chan<- RateUpdate) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				b.logger.Error("binance stream: read failed", "error", err)
			}
			return
		}

		var envelope struct {
			Stream string `json:"stream"`
			Data   struct {
				Symbol string `json:"s"`
				Close  string `json:"c"`
			} `json:"data"`
		}
		if err := json.Unmarshal(message, &envelope); err != nil {
			b.logger.Warn("binance stream: failed to parse message", "error", err)
			continue
		}
		symbol := envelope.Data.Symbol
		if !strings.HasSuffix(symbol, "USDT") {
			continue
		}
		price, err := strconv.ParseFloat(envelope.Data.Close, 64)
		if err != nil {
			b.logger.Warn("binance stream: failed to parse price", "symbol", symbol, "error", err)
			continue
		}
		if price <= 0 {
			continue
		}

		// The ticker quotes USD per coin; the rate table stores units per USD.
		update := RateUpdate{
			Code:      strings.TrimSuffix(symbol, "USDT"),
			RateToUSD: 1 / price,
		}
		select {
		case updates <- update:
		case <-ctx.Done():
			return
		}
	}
}
