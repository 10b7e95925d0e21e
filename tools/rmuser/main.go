package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mdouchement/todo/internal/database"
	"github.com/muesli/coral"
	"github.com/pkg/errors"
)

func main() {
	var (
		cfg database.Config
		yes bool
	)

	c := &coral.Command{
		Use:   "rmuser <database> <username>",
		Short: "Remove a user and all its todos from the database",
		Args:  coral.ExactArgs(2),
		RunE: func(_ *coral.Command, args []string) error {
			cfg.Path = args[0]

			//
			//
			fmt.Println("Opening", cfg.Path)
			db, err := database.Open(cfg)
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			// Fetch user
			user, err := db.FindUserByUsername(args[1])
			if err != nil {
				if db.IsNotFound(err) {
					fmt.Println("No account for this username")
					return nil
				}
				return errors.Wrap(err, "find user by username")
			}

			fmt.Println("User found:", user.ID)

			if !yes {
				answer, err := readline.Line(fmt.Sprintf("Remove %s and all its todos? [y/N] ", user.Username))
				if err != nil {
					return errors.Wrap(err, "confirmation")
				}
				if strings.ToLower(strings.TrimSpace(answer)) != "y" {
					fmt.Println("Aborted")
					return nil
				}
			}

			// Deleting user's todos
			if err = db.DeleteTodosByUserID(user.ID); err != nil {
				return errors.Wrap(err, "delete todos")
			}
			fmt.Println("Todos removed")

			// Deleting user's sessions
			if err = db.DeleteSessionsByUserID(user.ID); err != nil {
				return errors.Wrap(err, "delete sessions")
			}
			fmt.Println("Sessions removed")

			// Delete user
			err = db.Delete(user)
			if err != nil && !db.IsNotFound(err) {
				return errors.Wrap(err, "delete user")
			}
			fmt.Println("User removed")

			return nil
		},
	}
	c.Flags().StringVarP(&cfg.Driver, "driver", "d", database.DriverStorm, "Database driver (storm or sqlite)")
	c.Flags().StringVar(&cfg.Codec, "codec", "", "Storm codec (msgpack, cbor or binc)")
	c.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}
