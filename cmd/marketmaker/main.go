// Command marketmaker is a simulated external collaborator: it dials the
// gateway and continuously quotes a two-sided market, submitting fresh
// limit orders from a small worker pool the same way the corpus drives
// its connection handlers from internal/worker.go's pool.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	tomb "gopkg.in/tomb.v2"

	googrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"fenrir/internal/workerpool"
	grpctransport "fenrir/transport/grpc"
)

type quoteTask struct {
	side string
	offset int64
}

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the gateway")
	symbol := flag.String("symbol", "AAPL", "symbol to quote")
	mid := flag.Int64("mid-cents", 10000, "mid price in cents")
	spreadTicks := flag.Int64("spread-ticks", 5, "half-spread in ticks (cents)")
	size := flag.Uint64("size", 100, "size per quote")
	workers := flag.Uint("workers", 4, "concurrent order submitters")
	interval := flag.Duration("interval", 500*time.Millisecond, "time between quote refreshes")
	flag.Parse()

	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	conn, err := googrpc.NewClient(*serverAddr,
		googrpc.WithTransportCredentials(insecure.NewCredentials()),
		googrpc.WithDefaultCallOptions(googrpc.ForceCodec(jsonCodec{})),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("unable to connect to gateway")
	}
	defer conn.Close()

	pool := workerpool.New(*workers, 0, logger)

	t, ctx := tomb.WithContext(context.Background())
	pool.Run(t, func(t *tomb.Tomb, task any) error {
		qt := task.(quoteTask)
		submitQuote(ctx, conn, *symbol, qt, *mid, *size, logger)
		return nil
	})

	t.Go(func() error {
		ticker := time.NewTicker(*interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.Dying():
				return nil
			case <-ticker.C:
				drift := rand.Int63n(3) - 1
				*mid += drift
				pool.AddTask(quoteTask{side: "BUY", offset: -*spreadTicks})
				pool.AddTask(quoteTask{side: "SELL", offset: *spreadTicks})
			}
		}
	})

	<-t.Dead()
}

func submitQuote(ctx context.Context, conn *googrpc.ClientConn, symbol string, qt quoteTask, midCents int64, size uint64, logger zerolog.Logger) {
	priceCents := midCents + qt.offset
	req := &grpctransport.NewOrderRequest{
		Symbol: symbol,
		Side:   qt.side,
		Kind:   "LIMIT",
		Price:  fmt.Sprintf("%d.%02d", priceCents/100, priceCents%100),
		Size:   size,
		Owner:  "marketmaker",
	}
	resp := new(grpctransport.NewOrderResponse)
	callCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := conn.Invoke(callCtx, "/fenrir.exchange.Exchange/NewOrder", req, resp); err != nil {
		logger.Error().Err(err).Str("side", qt.side).Msg("quote submission failed")
		return
	}
	logger.Info().Uint64("order_id", resp.OrderID).Str("side", qt.side).Str("price", req.Price).Msg("quote placed")
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return "json" }
