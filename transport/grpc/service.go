// Package grpc is the external-collaborator gateway: it exposes the
// process-local book registry over a hand-described gRPC service (no
// protoc-generated stubs; see codec.go and desc.go), the networked
// counterpart of the corpus's binary TCP framing in internal/net.
package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	googrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	tomb "gopkg.in/tomb.v2"

	"fenrir/internal/book"
	"fenrir/internal/bookerr"
	"fenrir/internal/registry"
)

// Gateway implements the hand-described Exchange service against a
// Registry, and fans out execution reports to whichever subscriber
// channels are in its subscribers map per order id (no method adds one).
type Gateway struct {
	reg    *registry.Registry
	logger zerolog.Logger

	mu          sync.Mutex
	subscribers map[uint64][]chan ExecutionReport
}

// NewGateway wraps reg for serving.
func NewGateway(reg *registry.Registry, logger zerolog.Logger) *Gateway {
	return &Gateway{
		reg:         reg,
		logger:      logger,
		subscribers: make(map[uint64][]chan ExecutionReport),
	}
}

func (g *Gateway) reportCallback(symbol, requestID string) book.Callback {
	return func(msg book.MessageKind, id uint64, price decimal.Decimal, size uint64) {
		report := ExecutionReport{
			Symbol:    symbol,
			OrderID:   id,
			RequestID: requestID,
			Message:   msg.String(),
			Price:     price.String(),
			Size:      size,
		}

		g.mu.Lock()
		chans := g.subscribers[id]
		g.mu.Unlock()

		for _, ch := range chans {
			select {
			case ch <- report:
			default:
				g.logger.Warn().Uint64("order_id", id).Msg("execution report dropped, subscriber slow")
			}
		}
	}
}

// NewOrder dispatches a NewOrderRequest to the named symbol's book.
func (g *Gateway) NewOrder(ctx context.Context, req *NewOrderRequest) (*NewOrderResponse, error) {
	b, err := g.reg.Lookup(req.Symbol)
	if err != nil {
		return nil, err
	}

	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}

	requestID := uuid.New().String()
	cb := g.reportCallback(req.Symbol, requestID)

	var id uint64
	switch req.Kind {
	case "LIMIT":
		price, perr := decimal.NewFromString(req.Price)
		if perr != nil {
			return nil, bookerr.New(bookerr.InvalidArgument, "invalid price")
		}
		id, err = b.InsertLimit(side, price, req.Size, cb)
	case "MARKET":
		id, err = b.InsertMarket(side, req.Size, cb)
	case "STOP":
		trigger, perr := decimal.NewFromString(req.TriggerPrice)
		if perr != nil {
			return nil, bookerr.New(bookerr.InvalidArgument, "invalid trigger_price")
		}
		id, err = b.InsertStop(side, trigger, req.Size, cb)
	case "STOP_LIMIT":
		trigger, perr := decimal.NewFromString(req.TriggerPrice)
		if perr != nil {
			return nil, bookerr.New(bookerr.InvalidArgument, "invalid trigger_price")
		}
		price, perr := decimal.NewFromString(req.Price)
		if perr != nil {
			return nil, bookerr.New(bookerr.InvalidArgument, "invalid price")
		}
		id, err = b.InsertStopLimit(side, trigger, price, req.Size, cb)
	default:
		return nil, bookerr.Newf(bookerr.InvalidArgument, "unknown order kind %q", req.Kind)
	}
	if err != nil {
		return nil, err
	}

	return &NewOrderResponse{OrderID: id, RequestID: requestID}, nil
}

// CancelOrder pulls a resting order from the named symbol's book.
func (g *Gateway) CancelOrder(ctx context.Context, req *CancelOrderRequest) (*CancelOrderResponse, error) {
	b, err := g.reg.Lookup(req.Symbol)
	if err != nil {
		return nil, err
	}
	if err := b.PullOrder(req.OrderID); err != nil {
		return nil, err
	}
	g.mu.Lock()
	delete(g.subscribers, req.OrderID)
	g.mu.Unlock()
	return &CancelOrderResponse{Ok: true}, nil
}

// Quote returns the current top-of-book snapshot for a symbol.
func (g *Gateway) Quote(ctx context.Context, req *QuoteRequest) (*QuoteResponse, error) {
	b, err := g.reg.Lookup(req.Symbol)
	if err != nil {
		return nil, err
	}

	resp := &QuoteResponse{LastPrice: b.LastPrice().String(), BidSize: b.BidSize(), AskSize: b.AskSize()}
	if bid, err := b.BidPrice(); err == nil {
		resp.BidPrice = bid.String()
	}
	if ask, err := b.AskPrice(); err == nil {
		resp.AskPrice = ask.String()
	}
	return resp, nil
}

func parseSide(s string) (book.Side, error) {
	switch s {
	case "BUY":
		return book.Buy, nil
	case "SELL":
		return book.Sell, nil
	default:
		return 0, bookerr.Newf(bookerr.InvalidArgument, "unknown side %q", s)
	}
}

// Server owns the listener and the grpc.Server lifetime, supervised by a
// tomb the same way the corpus's net.Server supervises its worker pool.
type Server struct {
	address string
	gateway *Gateway
	logger  zerolog.Logger

	cancel context.CancelFunc
}

// NewServer builds a gateway Server bound to address (host:port).
func NewServer(address string, reg *registry.Registry, logger zerolog.Logger) *Server {
	return &Server{
		address: address,
		gateway: NewGateway(reg, logger),
		logger:  logger,
	}
}

// Shutdown cancels the server's context, unblocking Run.
func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Run serves the gateway until ctx is cancelled. It blocks until the
// listener closes.
func (s *Server) Run(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("gateway listen: %w", err)
	}

	srv := googrpc.NewServer(
		googrpc.Creds(insecure.NewCredentials()),
		googrpc.ForceServerCodec(jsonCodec{}),
	)
	srv.RegisterService(&exchangeServiceDesc, s.gateway)

	t.Go(func() error {
		s.logger.Info().Str("address", s.address).Msg("gateway listening")
		return srv.Serve(listener)
	})
	t.Go(func() error {
		<-ctx.Done()
		srv.GracefulStop()
		return nil
	})

	return t.Wait()
}
