// mockplatform serves the in-memory ticketing platform stand-in so the CLI
// client can be exercised without the real backend.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/uiseon98/ticketmongo-client/internal/platformtest"
)

func main() {
	addr := flag.String("addr", ":8089", "listen address")
	requireKey := flag.Bool("require-key", true, "enforce access keys on seat endpoints")
	immediate := flag.Bool("immediate", false, "admit queue entries immediately")
	flag.Parse()

	srv := platformtest.NewServer(platformtest.Options{
		RequireAccessKey: *requireKey,
		ImmediateEntry:   *immediate,
	})

	e := srv.Echo()
	go func() {
		if err := e.Start(*addr); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
}
