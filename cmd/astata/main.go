package main

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	"github.com/spf13/pflag"

	"github.com/jeffwilliams/astata/internal/config"
	"github.com/jeffwilliams/astata/internal/deliver"
	"github.com/jeffwilliams/astata/internal/region"
	"github.com/jeffwilliams/astata/internal/strip"
	anvil "github.com/jeffwilliams/astata/pkg/anvil-go-api"
)

var (
	optDebug          = pflag.BoolP("debug", "d", false, "Print debug messages")
	optProfile        = pflag.Bool("profile", false, "Write a CPU profile to the current directory")
	optSettings       = pflag.StringP("settings", "c", "", "Settings file to use instead of astata.toml in the Anvil configuration directory")
	optSampleSettings = pflag.BoolP("sample-settings", "s", false, "Print a sample settings file and exit")
)

// commandName is the command astata registers with Anvil.
const commandName = "Stata"

var (
	anvilHttpApi anvil.Anvil
	anvilWsApi   anvil.Websock
	app          *App
)

func main() {
	pflag.Parse()

	if *optSampleSettings {
		fmt.Print(config.GenerateSampleSettings())
		return
	}

	err := run()
	dieIfError(err, "exiting")
}

func run() error {
	if *optProfile {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	wireDebug()

	path := *optSettings
	if path == "" {
		path = config.SettingsConfigFile()
	}
	debug("astata: loading settings from %s\n", path)
	settings, err := config.Load(path, config.Defaults())
	if err != nil {
		return fmt.Errorf("loading settings failed: %w", err)
	}

	connectToAnvil()

	app, err = NewApp(anvilHttpApi, settings)
	if err != nil {
		return err
	}
	defer app.Close()

	w, err := config.Watch(path, func() { app.Reload(path) })
	if err != nil {
		debug("astata: not watching settings file %s: %v\n", path, err)
	} else {
		defer w.Close()
	}

	err = anvilHttpApi.RegisterCommands(commandName)
	if err != nil {
		return fmt.Errorf("registering command %s failed: %w", commandName, err)
	}
	debug("astata: registered command %s\n", commandName)

	err = anvilWsApi.Run()
	return fmt.Errorf("reading notifications failed: %w", err)
}

func connectToAnvil() {
	debug("astata: connecting to HTTP API\n")
	var err error
	anvilHttpApi, err = anvil.NewFromEnv()
	dieIfError(err, "connecting to API failed")

	handlers := anvil.WebsockHandlers{
		Notification: handleNotification,
	}

	debug("astata: connecting to WS API\n")
	anvilWsApi, err = anvilHttpApi.Websock(handlers)
	dieIfError(err, "creating websocket failed")
}

func wireDebug() {
	if !*optDebug {
		return
	}
	config.Debug = debug
	deliver.Debug = debug
	region.Debug = debug
	strip.Debug = debug
}

func dieIfError(err error, msg string) {
	if err != nil {
		msg := fmt.Sprintf("%s: %s", msg, err)
		die(msg)
	}
}

func die(msg string) {
	fmt.Fprintf(os.Stderr, "astata: %s\n", msg)
	os.Exit(1)
}

func debug(format string, args ...interface{}) {
	if !*optDebug {
		return
	}
	fmt.Printf(format, args...)
}

func handleNotification(notif *anvil.Notification, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "astata: parsing notification failed: %v\n", err)
		return
	}

	if notif.Op != anvil.NotificationOpExec || len(notif.Cmd) == 0 || notif.Cmd[0] != commandName {
		return
	}

	debug("astata: got exec notification: %#v\n", notif)
	app.Exec(notif.WinId, notif.Cmd[1:])
}
