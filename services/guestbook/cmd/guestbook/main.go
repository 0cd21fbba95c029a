package main

import (
	"context"
	"log"
)

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		log.Fatalf("guestbook: %v", err)
	}
}
