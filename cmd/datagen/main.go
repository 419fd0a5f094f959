package main

import (
	"context"
	"os"
	"os/signal"
	"strings"

	"github.com/JonMunkholm/datagen/internal/cli"
	"github.com/JonMunkholm/datagen/internal/core"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		// One line on stderr, no usage dump
		msg := err.Error()
		if core.IsUserFacing(err) {
			msg = core.FormatUserError(err)
		}
		msg = strings.Join(strings.Fields(msg), " ")
		os.Stderr.WriteString("datagen: " + msg + "\n")
		stop()
		os.Exit(1)
	}
}
