package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

const banner = `
┌────────────────────────────────────────────────────────────────┐
│                                                                │
│    Welcome to ArtEngine                                        │
│    The automatic artbook generator powered by AI               │
│                                                                │
│    Unleashing creativity with the power of artificial          │
│    intelligence to transform your visions into art.            │
│                                                                │
└────────────────────────────────────────────────────────────────┘
`

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR! %v\n", err)
		stop()
		os.Exit(1)
	}
}
