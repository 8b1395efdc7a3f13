package main

import (
	"context"
	"encoding/json"
	"flag"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	googrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	grpctransport "fenrir/transport/grpc"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the gateway")
	owner := flag.String("owner", "", "owner username (compulsory)")
	action := flag.String("action", "place", "action to perform: ['place', 'cancel', 'quote']")

	symbol := flag.String("symbol", "AAPL", "symbol to trade")
	sideStr := flag.String("side", "buy", "order side: 'buy' or 'sell'")
	kindStr := flag.String("kind", "limit", "order kind: 'limit', 'market', 'stop', 'stop_limit'")
	price := flag.String("price", "100.00", "limit price")
	triggerPrice := flag.String("trigger-price", "100.00", "stop trigger price")
	qty := flag.Uint64("qty", 10, "quantity")

	orderID := flag.Uint64("order-id", 0, "order id to cancel")

	flag.Parse()

	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	log.Logger = logger

	if *action != "quote" && *owner == "" {
		log.Fatal().Msg("-owner is compulsory")
	}

	conn, err := googrpc.NewClient(*serverAddr,
		googrpc.WithTransportCredentials(insecure.NewCredentials()),
		googrpc.WithDefaultCallOptions(googrpc.ForceCodec(jsonCodec{})),
	)
	if err != nil {
		log.Fatal().Err(err).Str("server", *serverAddr).Msg("failed to connect to gateway")
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	switch strings.ToLower(*action) {
	case "place":
		req := &grpctransport.NewOrderRequest{
			Symbol:       *symbol,
			Side:         strings.ToUpper(*sideStr),
			Kind:         strings.ToUpper(*kindStr),
			Price:        *price,
			TriggerPrice: *triggerPrice,
			Size:         *qty,
			Owner:        *owner,
		}
		resp := new(grpctransport.NewOrderResponse)
		if err := conn.Invoke(ctx, "/fenrir.exchange.Exchange/NewOrder", req, resp); err != nil {
			log.Fatal().Err(err).Msg("place order failed")
		}
		log.Info().Uint64("order_id", resp.OrderID).Str("request_id", resp.RequestID).Msg("order accepted")

	case "cancel":
		if *orderID == 0 {
			log.Fatal().Msg("-order-id is required for cancellation")
		}
		req := &grpctransport.CancelOrderRequest{Symbol: *symbol, OrderID: *orderID}
		resp := new(grpctransport.CancelOrderResponse)
		if err := conn.Invoke(ctx, "/fenrir.exchange.Exchange/CancelOrder", req, resp); err != nil {
			log.Fatal().Err(err).Msg("cancel failed")
		}
		log.Info().Bool("ok", resp.Ok).Msg("cancelled")

	case "quote":
		req := &grpctransport.QuoteRequest{Symbol: *symbol}
		resp := new(grpctransport.QuoteResponse)
		if err := conn.Invoke(ctx, "/fenrir.exchange.Exchange/Quote", req, resp); err != nil {
			log.Fatal().Err(err).Msg("quote failed")
		}
		log.Info().
			Str("bid", resp.BidPrice).Uint64("bid_size", resp.BidSize).
			Str("ask", resp.AskPrice).Uint64("ask_size", resp.AskSize).
			Str("last", resp.LastPrice).
			Msg("quote")

	default:
		log.Fatal().Str("action", *action).Msg("unknown action")
	}
}

// jsonCodec mirrors transport/grpc's codec so the client negotiates the
// same wire format without importing an unexported type across packages.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "json" }
