package main

import (
	"log"

	"github.com/futig/survey-agent/internal/builder"
)

func main() {
	app, err := builder.Build()
	if err != nil {
		log.Fatalf("survey-agent: build: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Fatalf("survey-agent: %v", err)
	}
}
