package main

import (
	"leaguebot/bot"
	"leaguebot/config"
	"leaguebot/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("設定の読み込みに失敗しました", "error", err)
	}
	log := logger.Init(logger.Options{File: cfg.Log.File, Level: cfg.Log.Level})

	b, err := bot.New(cfg, log)
	if err != nil {
		log.Fatal("Botの初期化に失敗しました", "error", err)
	}
	if err := b.Start(); err != nil {
		log.Fatal("Botの実行中にエラーが発生しました", "error", err)
	}
}
