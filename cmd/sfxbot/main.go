package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/viant/sfxbot"
)

func main() {
	configURL := flag.String("config", "", "optional YAML config URL (any afs scheme)")
	flag.Parse()

	if _, err := os.Lstat(".env"); err == nil {
		if err = godotenv.Load(".env"); err != nil {
			log.Fatal(err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := sfxbot.LoadConfig(ctx, *configURL)
	if err != nil {
		log.Fatal(err)
	}
	bot, err := sfxbot.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err = bot.Run(ctx); err != nil {
		log.Fatal(err)
	}
}
