package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hyp3rd/storefront"
	"github.com/hyp3rd/storefront/pkg/middleware"
)

func main() {
	backendURL := os.Getenv("STOREFRONT_BACKEND_URL")
	if backendURL == "" {
		backendURL = "http://localhost:4000"
	}

	listenAddr := os.Getenv("STOREFRONT_GATEWAY_ADDR")
	if listenAddr == "" {
		listenAddr = ":8080"
	}

	cfg := storefront.NewConfig(backendURL,
		storefront.WithStaticPreferences("en-US", "USD"),
		storefront.WithSessionExpiredHandler(func(_ context.Context) {
			log.Println("session expired, sign-in required")
		}),
	)

	logger := log.New(os.Stderr, "storefront ", log.LstdFlags)

	svc, err := storefront.NewService(cfg, func(next storefront.Service) storefront.Service {
		return middleware.NewLoggingMiddleware(next, logger)
	})
	if err != nil {
		fmt.Println(err)

		return
	}

	ctx := context.Background()

	err = svc.PrimeCSRF(ctx)
	if err != nil {
		log.Println("csrf prime failed:", err)
	}

	gw := storefront.NewGateway(listenAddr, svc)

	err = gw.Start(ctx)
	if err != nil {
		fmt.Println(err)

		return
	}

	log.Println("gateway listening on", gw.Address())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = gw.Shutdown(shutdownCtx)
	if err != nil {
		log.Println("shutdown:", err)
	}
}
