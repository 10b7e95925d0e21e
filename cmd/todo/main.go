package main

import (
	"fmt"
	"hash"
	"io"
	"log"
	"net"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/mdouchement/todo/internal/database"
	"github.com/mdouchement/todo/internal/logger"
	"github.com/mdouchement/todo/internal/server"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/hkdf"
)

const (
	dbname     = "todo.db"
	envPrefix  = "TODO_"
	sessionTTL = 14 * 24 * time.Hour
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cfg string
)

func main() {
	c := &coral.Command{
		Use:     "todo",
		Short:   "Todo list web application",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    coral.ExactArgs(0),
	}
	initCmd.Flags().StringVarP(&cfg, "config", "c", "", "Configuration file")
	c.AddCommand(initCmd)

	reindexCmd.Flags().StringVarP(&cfg, "config", "c", "", "Configuration file")
	c.AddCommand(reindexCmd)

	serverCmd.Flags().StringVarP(&cfg, "config", "c", "", "Configuration file")
	c.AddCommand(serverCmd)

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

// load reads the configuration file then the environment overrides.
// TODO_DATABASE__PATH overrides database.path.
func load() (*koanf.Koanf, error) {
	konf := koanf.New(".")
	if cfg != "" {
		if err := konf.Load(file.Provider(cfg), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, "could not load configuration file")
		}
	}

	err := konf.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}), nil)
	return konf, errors.Wrap(err, "could not load environment")
}

func databaseConfig(konf *koanf.Koanf) database.Config {
	cfg := database.Config{
		Driver: konf.String("database.driver"),
		Path:   konf.String("database.path"),
		Codec:  konf.String("database.codec"),
	}
	if cfg.Driver == "" {
		cfg.Driver = database.DriverStorm
	}
	if cfg.Path == "" {
		cfg.Path = dbname
	}
	return cfg
}

func kdf(l int, k []byte) []byte {
	nhash := func() hash.Hash {
		h, err := blake2b.New256(nil)
		if err != nil {
			panic(err)
		}
		return h
	}

	payload := make([]byte, l)

	kdf := hkdf.New(nhash, k, nil, nil)
	_, err := io.ReadFull(kdf, payload)
	if err != nil {
		panic(err)
	}

	return payload
}

var (
	initCmd = &coral.Command{
		Use:   "init",
		Short: "Init the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load()
			if err != nil {
				return err
			}

			return database.Init(databaseConfig(konf))
		},
	}

	//
	reindexCmd = &coral.Command{
		Use:   "reindex",
		Short: "Reindex the database",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load()
			if err != nil {
				return err
			}

			return database.ReIndex(databaseConfig(konf))
		},
	}

	//
	//
	serverCmd = &coral.Command{
		Use:   "server",
		Short: "Start server",
		Args:  coral.ExactArgs(0),
		RunE: func(_ *coral.Command, _ []string) error {
			konf, err := load()
			if err != nil {
				return err
			}

			if konf.String("session.secret") == "" {
				return errors.New("session secret not found")
			}

			ttl := sessionTTL
			if konf.Exists("session.ttl") {
				ttl = konf.MustDuration("session.ttl")
			}

			l, err := logger.New(logger.Config{
				Level: konf.String("log.level"),
				File:  konf.String("log.file"),
			})
			if err != nil {
				return errors.Wrap(err, "could not initialize logger")
			}

			db, err := database.Open(databaseConfig(konf))
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			engine := server.EchoEngine(server.Controller{
				Version:               version,
				Database:              db,
				Logger:                l,
				NoRegistration:        konf.Bool("no_registration"),
				CSRF:                  !konf.Exists("csrf") || konf.Bool("csrf"),
				Metrics:               konf.Bool("metrics"),
				SecureCookie:          konf.Bool("session.secure_cookie"),
				SessionSecret:         kdf(32, konf.MustBytes("session.secret")),
				SessionExpirationTime: ttl,
			})
			server.PrintRoutes(engine)

			address := konf.String("address")
			message := "could not run server"
			l.Infof("Server listening on %s", address)
			parts := strings.Split(address, ":")
			if len(parts) == 2 && parts[0] == "unix" {
				socketFile := parts[1]
				if _, err := os.Stat(socketFile); err == nil {
					l.Infof("Removing existing %s", socketFile)
					os.Remove(socketFile)
				}
				defer os.Remove(socketFile)
				listener, err := net.Listen(parts[0], socketFile)
				if err != nil {
					return err
				}
				return errors.Wrap(engine.Server.Serve(listener), message)
			}
			return errors.Wrap(engine.Start(address), message)
		},
	}
)
