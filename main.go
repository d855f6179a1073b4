package main

import (
	"context"
	"os"

	"github.com/Rakhulsr/go-bookstore/app/cmd"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := cmd.RunCli(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("bookstore")
	}
}
