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
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/localnerve/traction-tracker/internal/devstack"
	"github.com/localnerve/traction-tracker/internal/utils"
	"go.uber.org/zap"
)

func main() {
	var showHelp, withRedis, withRabbit, seed bool
	var outFile string
	flag.BoolVar(&showHelp, "h", false, "show help")
	flag.BoolVar(&withRedis, "redis", true, "start a Redis container for the projection cache")
	flag.BoolVar(&withRabbit, "rabbitmq", true, "start a RabbitMQ container for domain events")
	flag.BoolVar(&seed, "seed", false, "insert apps that only have legacy inline actions")
	flag.StringVar(&outFile, "o", "", "write the stack environment to this .env file")
	flag.Parse()

	usage := `
Run the traction-tracker backing services in containers and print the
environment that reaches them.

Usage:

testcontainers [-h] [-redis=false] [-rabbitmq=false] [-seed] [-o ENV_FILE_PATH]

example
  testcontainers -seed -o .env.dev
`
	// if -h flag print usage and return
	if showHelp {
		fmt.Println(usage)
		return
	}

	zlog, err := utils.NewLogger("info", "console")
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	zap.ReplaceGlobals(zlog)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	apiVersion, err := devstack.Preflight(ctx)
	if err != nil {
		log.Fatalf("Docker is not available: %v", err)
	}
	zlog.Info("docker daemon reachable", zap.String("apiVersion", apiVersion), zap.Strings("images", devstack.Images()))

	stack, err := devstack.Start(ctx, devstack.Options{
		Redis:      withRedis,
		RabbitMQ:   withRabbit,
		SeedLegacy: seed,
	})
	if err != nil {
		log.Fatalf("Failed to create test containers: %v", err)
	}

	env := strings.Join(stack.EnvLines(), "\n") + "\n"
	fmt.Print(env)
	if outFile != "" {
		if err := os.WriteFile(outFile, []byte(env), 0o600); err != nil {
			log.Printf("Failed to write %s: %v", outFile, err)
		}
	}

	<-ctx.Done()
	log.Printf("Received signal, terminating test containers...")
	if err := stack.Terminate(context.Background()); err != nil {
		log.Printf("Terminate failed: %v", err)
	}
}
