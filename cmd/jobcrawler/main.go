package main

import (
	_ "embed"
	"os"

	"github.com/LouYuanbo1/jobcrawler/internal/config"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// 默认配置,--config 指定文件时不使用
//
//go:embed appconfig/appconfig.json
var appConfig []byte

var (
	cfg        *config.Config
	logger     = zap.NewNop()
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "jobcrawler",
	Short: "Acquire job postings from wanted and jumpit",
	Long: `Drives a headless browser against wanted.co.kr and jumpit.saramin.co.kr,
scrolls the infinite result lists and merges the parsed postings into one
date-ordered list. Results can be printed, indexed into Elasticsearch or
served over HTTP.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.Load(configPath)
		} else {
			cfg, err = config.ParseConfig(appConfig)
		}
		if err != nil {
			return eris.Wrap(err, "load config")
		}

		l, err := config.InitLogger(cfg.Log)
		if err != nil {
			return eris.Wrap(err, "init logger")
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a config file (json/yaml/toml), defaults to the embedded config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
