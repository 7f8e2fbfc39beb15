package main

import (
	"flag"
	"log"

	"github.com/vicaller/icm20948/internal/app"
	"github.com/vicaller/icm20948/internal/config"
)

func main() {
	configPath := flag.String("config", "./icm20948_config.txt", "path to configuration file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunConsole(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
