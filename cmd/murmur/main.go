package main

import (
	"log"

	"github.com/MrSnakeDoc/murmur/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ murmur failed to start: %v", err)
	}
}
