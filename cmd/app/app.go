package main

import (
	"fmt"
	"os"

	"github.com/DRSN-tech/pocopan-pos/internal/app"
	config "github.com/DRSN-tech/pocopan-pos/internal/cfg"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
)

//	@title			POCOPAN POS API
//	@version		1.0
//	@description	Касса POCOPAN: каталог, корзина, продажи по терминалам, панель и выгрузка журнала.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer <token> из /auth/login

func main() {
	logCfg, err := config.LoadLogCfg()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load log config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewZapLogger(logger.Options{
		Level:      logCfg.Level,
		Dev:        logCfg.Dev,
		File:       logCfg.File,
		MaxSizeMB:  logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
	})
	defer log.Sync()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		log.Sync()
		os.Exit(1)
	}
}
