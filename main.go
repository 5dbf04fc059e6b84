package main

import (
	"log"

	"github.com/outreachkit/prospector/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
