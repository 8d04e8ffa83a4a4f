package main

import (
	"github.com/nettf/nettf/internal/cli"
	"github.com/nettf/nettf/internal/config"
	"github.com/nettf/nettf/pkg/logger"
)

func main() {
	cfg := config.New()
	logger.Init(cfg.LogFile())
	cli.Execute(cfg)
}
