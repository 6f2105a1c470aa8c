// The readify command bootstraps the storage layer: it connects to the
// configured backend, ensures the declared secondary indexes exist and
// verifies connectivity, then releases the connection. Run it before
// pointing a web frontend at the database.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/readify-app/readify/internal/app"
)

func main() {
	if err := run(); err != nil {
		log.Fatalln(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New()
	if err != nil {
		return err
	}

	// Close must run on every exit path so the backend's connection pool
	// is released even when the readiness check fails.
	defer func() {
		if err := application.Close(context.Background()); err != nil {
			log.Println("storage close error:", err)
		}
	}()

	return application.Run(ctx)
}
