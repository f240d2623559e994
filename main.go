package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/spigell/hh-swiper/cmd"
)

func main() {
	// .env is optional; values already in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
