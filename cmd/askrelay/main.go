package main

import (
	"log"

	"askrelay/bot"
	corecmd "askrelay/core/cmd"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig:        bot.LoadConfig,
		Bootstrap:         bot.Bootstrap,
	})
	if err != nil {
		log.Fatalf("askrelay: %v", err)
	}
}
