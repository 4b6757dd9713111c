// main.go
//
// Growth tracking for small software products: apps, metric history, action plans and AI suggestions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of traction-tracker.
// traction-tracker is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// traction-tracker is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with traction-tracker.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/localnerve/traction-tracker/internal/config"
	"github.com/localnerve/traction-tracker/internal/database"
	"github.com/localnerve/traction-tracker/internal/services"
	"github.com/localnerve/traction-tracker/internal/utils"
	"go.uber.org/zap"
)

func main() {
	var showHelp, all bool
	var appID string
	flag.BoolVar(&showHelp, "h", false, "show help")
	flag.StringVar(&appID, "app", "", "import the legacy actions of one app")
	flag.BoolVar(&all, "all", false, "import the legacy actions of every app")
	flag.Parse()

	usage := `
Copy legacy inline action lists into the actions table. Apps that already
have action rows are skipped, so the import can be rerun.

Usage:

importactions [-h] (-app APP_ID | -all)
`
	if showHelp || (appID == "") == !all {
		fmt.Println(usage)
		if !showHelp {
			os.Exit(2)
		}
		return
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := utils.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	zap.ReplaceGlobals(zlog)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var results []services.ImportResult
	if all {
		results, err = services.ImportAllLegacyActions(ctx, db)
	} else {
		var result services.ImportResult
		if result, err = services.ImportLegacyActions(ctx, db, appID); err == nil {
			results = append(results, result)
		}
	}

	output, merr := json.MarshalIndent(results, "", "  ")
	if merr != nil {
		log.Fatalf("Failed to marshal import results: %v", merr)
	}
	fmt.Println(string(output))

	if err != nil {
		zlog.Error("import failed", zap.Error(err))
		os.Exit(1)
	}
}
