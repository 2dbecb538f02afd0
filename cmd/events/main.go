package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"ai-assistant-be/internal/config"
	"ai-assistant-be/pkg/events"
	pktNats "ai-assistant-be/pkg/nats"

	"github.com/fatih/color"
)

// Tails the event bus and prints every domain event. Useful for watching
// logins and account activity while developing.
func main() {
	cfg := config.Load()

	sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Unable to connect to NATS: %v", err)
	}
	defer sub.Close()

	err = sub.Subscribe("events.>", "events-tail", func(ctx context.Context, event events.Event) error {
		code := strings.TrimPrefix(event.EventType(), "events.")
		switch code {
		case events.UserDeleted:
			color.Red("✗ %s %v", code, event.Payload())
		case events.UserRegistered:
			color.Green("✓ %s %v", code, event.Payload())
		default:
			color.Yellow("• %s %v", code, event.Payload())
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Unable to subscribe: %v", err)
	}

	color.Cyan("Listening on events.> (ctrl-c to stop)")
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}
