package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/bdgeo/location-api/pkg/config"
	"github.com/bdgeo/location-api/pkg/logger"
)

var version = "1.0.0"

const usage = `server [--base-dir DIR] [--addr ADDR] [command]

commands:
  serve                 run the API server (default)
  migrate up|down       apply or roll back schema migrations
  seed [--file FILE]    load locations from FILE or the bundled dataset
  sendtestemail ADDR... send a test message through the e-mail backend
  check                 print the effective settings
  version               print the version
`

func main() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	baseDir := fs.String("base-dir", ".", "Directory holding .env, logs/ and the SQLite database")
	fs.String("addr", config.DefaultListenAddr, "Address the API server listens on")
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	fs.Parse(os.Args[1:])

	args := fs.Args()
	cmd := "serve"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}
	if cmd == "version" {
		fmt.Println("location-api", version)
		return
	}

	// Relative SQLite paths resolve against the base directory
	if err := os.Chdir(*baseDir); err != nil {
		log.Fatalf("Failed to enter base directory: %v", err)
	}
	settings, err := config.Load(config.Options{BaseDir: ".", Flags: fs})
	if err != nil {
		log.Fatalf("Failed to load settings: %v", err)
	}
	if err := logger.Init(settings.Logging); err != nil {
		log.Fatalf("Failed to initialise logging: %v", err)
	}
	defer logger.Close()
	for _, w := range settings.Warnings {
		logger.Log(logger.LevelWarn, nil, nil, w)
	}

	switch cmd {
	case "serve":
		err = serve(settings)
	case "migrate":
		err = migrateCmd(settings, args)
	case "seed":
		err = seedCmd(settings, args)
	case "sendtestemail":
		err = sendTestEmailCmd(settings, args)
	case "check":
		err = checkCmd(settings, os.Stdout)
	default:
		fs.Usage()
		err = fmt.Errorf("unknown command %q", cmd)
	}
	if err != nil {
		logger.Log(logger.LevelError, map[string]string{"command": cmd}, err, "command failed")
		logger.Close()
		os.Exit(1)
	}
}
