package main

import (
	"log"

	"github.com/konflic/purchase-bot/bot"
	"github.com/konflic/purchase-bot/core/bootstrap"
	corecmd "github.com/konflic/purchase-bot/core/cmd"
	coreconfig "github.com/konflic/purchase-bot/core/config"
)

type carrier struct {
	cfg *coreconfig.Config
}

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

func main() {
	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			cfg, err := coreconfig.Load(path)
			if err != nil {
				return nil, err
			}
			return carrier{cfg: cfg}, nil
		},
		Bootstrap: func(cc corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			cfg := cc.CoreConfig()
			res, err := bootstrap.Run(bootstrap.Options{Config: cfg})
			if err != nil {
				return nil, err
			}
			return bot.New(cfg, res.Store), nil
		},
	})
	if err != nil {
		log.Fatalf("purchase-bot: %v", err)
	}
}
