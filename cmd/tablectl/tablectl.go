package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/appdata/tables-client/pkg/tables/client"
	"github.com/appdata/tables-client/pkg/tables/config"
	"github.com/appdata/tables-client/pkg/tables/sysprops"
	"github.com/diwise/service-chassis/pkg/infrastructure/buildinfo"
	"github.com/diwise/service-chassis/pkg/infrastructure/env"
	"github.com/diwise/service-chassis/pkg/infrastructure/o11y"
)

const (
	appName string = "tablectl"
)

func main() {
	appVersion := buildinfo.SourceVersion()

	ctx, log, cleanup := o11y.Init(context.Background(), appName, appVersion, "json")
	defer cleanup()

	tableName := flag.String("table", "", "name of the table to operate on")
	flag.Parse()

	args := flag.Args()

	if *tableName == "" || len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: tablectl -table <name> lookup|delete <id>")
		os.Exit(1)
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		log.Error("failed to load configuration", "err", err.Error())
		os.Exit(1)
	}

	set := sysprops.Set{}

	if info, ok := cfg.Table(*tableName); ok {
		set, err = info.SystemPropertySet()
		if err != nil {
			log.Error("bad table configuration", "err", err.Error())
			os.Exit(1)
		}
	}

	tc, err := client.NewTableClient(cfg.Endpoint, *tableName,
		client.ApplicationKey(cfg.ApplicationKey),
		client.SystemPropertySet(set),
		client.Debug(env.GetVariableOrDefault(ctx, "TABLES_DEBUG", "false")),
	)
	if err != nil {
		log.Error("failed to create table client", "err", err.Error())
		os.Exit(1)
	}

	switch args[0] {
	case "lookup":
		item, err := tc.Lookup(ctx, args[1])
		if err != nil {
			log.Error("lookup failed", "err", err.Error())
			os.Exit(1)
		}

		body, _ := json.Marshal(item)
		fmt.Println(string(body))
	case "delete":
		_, err := tc.Delete(ctx, args[1])
		if err != nil {
			log.Error("delete failed", "err", err.Error())
			os.Exit(1)
		}

		log.Info("item deleted", "table", *tableName, "id", args[1])
	default:
		fmt.Fprintln(os.Stderr, "usage: tablectl -table <name> lookup|delete <id>")
		os.Exit(1)
	}
}

func loadConfig(ctx context.Context) (*config.Config, error) {
	configPath := env.GetVariableOrDefault(ctx, "TABLES_CONFIG", "tables.yaml")

	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return config.LoadConfiguration(f)
}
