package main

import (
	"encoding/json"
	"fmt"
	"log"
	"reflect"

	"github.com/asdine/storm/v3"
	"github.com/mdouchement/todo/internal/database"
	"github.com/mdouchement/todo/internal/model"
	"github.com/mdouchement/todo/pkg/stormsql"
	"github.com/mdouchement/todo/pkg/structs"
	"github.com/pkg/errors"
	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"
)

// go run tools/console/main.go todo.db "SELECT ID, Name FROM todos WHERE UserID = 1 AND IsCompleted = false ORDER BY ID DESC LIMIT 4"

var tables = map[string]reflect.Type{
	"users":    reflect.TypeOf(model.User{}),
	"sessions": reflect.TypeOf(model.Session{}),
	"todos":    reflect.TypeOf(model.Todo{}),
}

func main() {
	var (
		codec  string
		format string
	)

	c := &cobra.Command{
		Use:   "console <database> <query>",
		Short: "SQL console for storm todo database",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			//
			//
			sc, err := stormsql.ParseSelect(args[1])
			if err != nil {
				return err
			}

			table, ok := tables[sc.Tablename]
			if !ok {
				return errors.Errorf("unknown tablename: %s", sc.Tablename)
			}

			//
			//
			fmt.Println("Opening", args[0])
			opt, err := database.StormCodec(codec)
			if err != nil {
				return err
			}

			db, err := storm.Open(args[0], opt)
			if err != nil {
				return errors.Wrap(err, "could not open database")
			}
			defer db.Close()

			//
			// Prepare request
			//

			query := db.Select(sc.Matcher)
			if sc.Skip > 0 {
				query.Skip(sc.Skip)
			}
			if sc.Limit > 0 {
				query.Limit(sc.Limit)
			}
			if len(sc.OrderBy) > 0 {
				query.OrderBy(sc.OrderBy...)
				if sc.OrderByReversed {
					query.Reverse()
				}
			}

			// Execute

			if sc.Count {
				return count(table, query)
			}

			return list(sc, table, query, format)
		},
	}
	c.Flags().StringVar(&codec, "codec", "", "Storm codec (msgpack, cbor or binc)")
	c.Flags().StringVarP(&format, "format", "f", "json", "Output format (json or go)")

	if err := c.Execute(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func count(table reflect.Type, query storm.Query) error {
	n, err := query.Count(reflect.New(table).Interface())
	if err != nil {
		return errors.Wrap(err, "could not perform query")
	}

	fmt.Println("Count:", n)
	return nil
}

func list(sc *stormsql.SelectClause, table reflect.Type, query storm.Query, format string) error {
	records := reflect.New(reflect.SliceOf(reflect.PointerTo(table)))

	err := query.Find(records.Interface())
	if err == storm.ErrNotFound {
		fmt.Println("[]")
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "could not perform query")
	}

	rows := make([]map[string]any, records.Elem().Len())
	for i := range rows {
		rows[i] = structs.Pick(records.Elem().Index(i).Interface(), sc.SelectedFields...)
	}

	switch format {
	case "go":
		litter.Dump(rows)
	case "json":
		jsondump(rows)
	default:
		return errors.Errorf("unknown format: %s", format)
	}
	return nil
}

func jsondump(v any) {
	d, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		panic(err)
	}
	fmt.Println(string(d))
}
