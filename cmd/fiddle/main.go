package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/ElrondNetwork/elrond-go/core/logging"
	"github.com/silence48/new-soroban-fiddle/api"
	"github.com/silence48/new-soroban-fiddle/bot"
	"github.com/silence48/new-soroban-fiddle/config"
	"github.com/silence48/new-soroban-fiddle/data"
	"github.com/silence48/new-soroban-fiddle/db"
	"github.com/silence48/new-soroban-fiddle/invoke"
	"github.com/silence48/new-soroban-fiddle/network"
	"github.com/silence48/new-soroban-fiddle/spec"
	"github.com/silence48/new-soroban-fiddle/utils"
	"github.com/silence48/new-soroban-fiddle/wallet"
	"github.com/urfave/cli"
)

const (
	defaultLogsPath      = "logs"
	logFilePrefix        = "soroban-fiddle"
	logFileLifeSpanInSec = 86400
)

var (
	fiddleHelpTemplate = `NAME:
   {{.Name}} - {{.Usage}}
USAGE:
   {{.HelpName}} {{if .VisibleFlags}}[global options]{{end}}
   {{if len .Authors}}
AUTHOR:
   {{range .Authors}}{{ . }}{{end}}
   {{end}}{{if .Commands}}
GLOBAL OPTIONS:
   {{range .VisibleFlags}}{{.}}
   {{end}}
VERSION:
   {{.Version}}
   {{end}}
`
	// configPathFlag defines a flag for the path of the application's configuration file
	configPathFlag = cli.StringFlag{
		Name:  "config-path",
		Usage: "The application will load its configuration parameters from this file",
		Value: utils.DefaultConfigPath,
	}
	// listenFlag overrides the address the HTTP server listens on
	listenFlag = cli.StringFlag{
		Name:  "listen",
		Usage: "The `address` the HTTP server listens on, e.g. 127.0.0.1:3000",
	}
	// logLevel defines the logger level
	logLevel = cli.StringFlag{
		Name: "log-level",
		Usage: "This flag specifies the logger `level(s)`. It can contain multiple comma-separated value. For example" +
			", if set to *:INFO the logs for all packages will have the INFO level. However, if set to *:INFO,api:DEBUG" +
			" the logs for all packages will have the INFO level, excepting the api package which will receive a DEBUG" +
			" log level.",
		Value: "*:" + logger.LogInfo.String(),
	}
	//logFile is used when the log output needs to be logged in a file
	logSaveFile = cli.BoolFlag{
		Name:  "log-save",
		Usage: "Boolean option for enabling log saving. If set, it will automatically save all the logs into a file.",
	}
)

var log = logger.GetOrCreate("main")

type fileLoggingHandler interface {
	ChangeFileLifeSpan(newDuration time.Duration) error
	Close() error
}

func main() {
	app := cli.NewApp()
	cli.AppHelpTemplate = fiddleHelpTemplate
	app.Name = "Soroban Fiddle"
	app.Usage = "Read, simulate and invoke the functions of Soroban contracts from a web page or a Telegram bot"
	app.Flags = []cli.Flag{
		configPathFlag,
		listenFlag,
		logLevel,
		logSaveFile,
	}
	app.Version = "v0.1.0"
	app.Authors = []cli.Author{
		{
			Name: "silence48",
		},
	}

	app.Action = func(c *cli.Context) error {
		return startApp(c)
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

func startApp(ctx *cli.Context) error {
	var err error

	logLevelFlagValue := ctx.GlobalString(logLevel.Name)
	err = logger.SetLogLevel(logLevelFlagValue)
	if err != nil {
		return err
	}

	withLogFile := ctx.GlobalBool(logSaveFile.Name)
	var fileLogging fileLoggingHandler
	if withLogFile {
		workingDir := getWorkingDir(log)
		fileLogging, err = logging.NewFileLogging(workingDir, defaultLogsPath, logFilePrefix)
		if err != nil {
			return fmt.Errorf("%w creating a log file", err)
		}

		err = fileLogging.ChangeFileLifeSpan(time.Second * time.Duration(logFileLifeSpanInSec))
		if err != nil {
			return err
		}
	}

	log.Info("starting soroban fiddle...")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	log.Info("loading config...")

	configurationFileName := ctx.GlobalString(configPathFlag.Name)
	appConfig, err := config.NewConfig(configurationFileName)
	if err != nil {
		return err
	}
	if listen := ctx.GlobalString(listenFlag.Name); listen != "" {
		appConfig.ListenAddress = listen
	}

	log.Info("initializing network manager...")

	networkManager, err := network.NewNetworkManager(appConfig)
	if err != nil {
		return err
	}
	defer func() {
		log.LogIfError(networkManager.Close())
	}()

	checkCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	networkManager.CheckNetwork(checkCtx)
	cancel()

	fetcher, err := spec.NewFetcher(networkManager)
	if err != nil {
		return err
	}

	var signer *wallet.SecretKey
	if appConfig.SecretKey != "" {
		signer, err = wallet.NewSecretKey(appConfig.SecretKey)
		if err != nil {
			return err
		}
		log.Info("invocations enabled", "account", signer.KeyPair().Address())
	}

	invoker, err := invoke.NewInvoker(networkManager, signer)
	if err != nil {
		return err
	}

	handlers, err := api.NewHandlers(fetcher, invoker)
	if err != nil {
		return err
	}

	log.Info("starting HTTP server...")

	server, err := api.NewServer(context.Background(), appConfig, handlers.Router())
	if err != nil {
		return err
	}
	server.Start()
	defer server.Stop()

	if appConfig.BotToken != "" {
		stopBot, err := startBot(appConfig, fetcher, invoker)
		if err != nil {
			return err
		}
		defer stopBot()
	}

	log.Info("application is now running...", "address", server.Addr().String())

	mainLoop(sigs)

	log.Debug("closing soroban fiddle...")
	if fileLogging != nil {
		err = fileLogging.Close()
		log.LogIfError(err)
	}

	return nil
}

func startBot(appConfig *data.AppConfig, fetcher *spec.Fetcher, invoker *invoke.Invoker) (func(), error) {
	log.Info("opening database...")

	database, err := db.NewDatabase(appConfig.DatabasePath)
	if err != nil {
		return nil, err
	}

	log.Info("creating Telegram bot instance...")

	tgBot, err := bot.NewBot(appConfig, database, fetcher, invoker)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	err = tgBot.StartTasks()
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	return func() {
		tgBot.Stop()
		log.LogIfError(database.Close())
	}, nil
}

func getWorkingDir(log logger.Logger) string {
	workingDir, err := os.Getwd()
	if err != nil {
		log.LogIfError(err)
		workingDir = ""
	}

	log.Trace("working directory", "path", workingDir)

	return workingDir
}

func mainLoop(stop chan os.Signal) {
	<-stop
	log.Info("terminating at user's signal...")
}
