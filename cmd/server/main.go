package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"fenrir/internal/metrics"
	"fenrir/internal/registry"
	"fenrir/internal/tick"
	grpctransport "fenrir/transport/grpc"
)

func main() {
	address := flag.String("address", "0.0.0.0:9001", "address the gateway listens on")
	symbol := flag.String("symbol", "AAPL", "initial symbol to create a book for")
	minPrice := flag.String("min-price", "1.00", "lowest tradable price for the initial symbol")
	maxPrice := flag.String("max-price", "10000.00", "highest tradable price for the initial symbol")
	flag.Parse()

	logger := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()
	log.Logger = logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reg := registry.New(logger)

	min, err := decimal.NewFromString(*minPrice)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid min-price")
	}
	max, err := decimal.NewFromString(*maxPrice)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid max-price")
	}

	collector := metrics.NewCollector(prometheus.DefaultRegisterer, *symbol)
	if _, err := reg.Create(*symbol, tick.Hundredth, min, max, collector); err != nil {
		log.Fatal().Err(err).Msg("unable to create initial book")
	}

	srv := grpctransport.NewServer(*address, reg, logger)
	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("gateway exited")
		}
	}()

	<-ctx.Done()
	srv.Shutdown()
}
