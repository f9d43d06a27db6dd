/*
Copyright 2026 the GoShop Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"errors"
	goflag "flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/pflag"

	"github.com/goshop/apitest/test/api"
	"github.com/goshop/apitest/test/fakeshop"

	"k8s.io/apimachinery/pkg/util/wait"

	cr "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"
)

var (
	ErrUsage = errors.New("usage: goshop-apitest [flags] wait|admin-token|serve")
)

const (
	pollInterval    = 2 * time.Second
	shutdownTimeout = 5 * time.Second
)

// Options are the command line options, defaults come from the same
// environment the suites read.
type Options struct {
	BaseURL       string
	AdminEmail    string
	AdminPassword string
	DatabaseURL   string
	Timeout       time.Duration
	Listen        string

	zap zap.Options
}

func (o *Options) AddFlags(config *api.TestConfig, f *pflag.FlagSet) {
	f.StringVar(&o.BaseURL, "base-url", config.BaseURL, "GoShop API base URL.")
	f.StringVar(&o.AdminEmail, "admin-email", config.AdminEmail, "Administrator email.")
	f.StringVar(&o.AdminPassword, "admin-password", config.AdminPassword, "Administrator password.")
	f.StringVar(&o.DatabaseURL, "database-url", config.AdminDatabaseURL, "PostgreSQL URL used to bootstrap the administrator.")
	f.DurationVar(&o.Timeout, "timeout", 2*time.Minute, "Time to wait for the API to become ready, or for an admin token.")
	f.StringVar(&o.Listen, "listen", ":8080", "Address the stub server listens on.")

	flags := goflag.NewFlagSet("zap", goflag.ExitOnError)
	o.zap.BindFlags(flags)
	f.AddGoFlagSet(flags)
}

// Apply overlays the options on the environment configuration.
func (o *Options) Apply(config *api.TestConfig) {
	config.BaseURL = o.BaseURL
	config.AdminEmail = o.AdminEmail
	config.AdminPassword = o.AdminPassword
	config.AdminDatabaseURL = o.DatabaseURL
}

// waitForAPI polls the public category listing until it answers 200.
func waitForAPI(ctx context.Context, logger logr.Logger, client *api.APIClient, timeout time.Duration) error {
	return wait.PollUntilContextTimeout(ctx, pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		resp, err := client.ListCategories(ctx)
		if err != nil {
			logger.Info("API not reachable", "baseURL", client.BaseURL(), "error", err.Error())
			return false, nil
		}

		if resp.StatusCode != http.StatusOK {
			logger.Info("API not ready", "baseURL", client.BaseURL(), "status", resp.StatusCode)
			return false, nil
		}

		return true, nil
	})
}

func adminToken(ctx context.Context, client *api.APIClient, config *api.TestConfig, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return api.AcquireAdminToken(ctx, client, config)
}

func serve(ctx context.Context, logger logr.Logger, listen string) error {
	options := fakeshop.DefaultOptions()
	options.Logger = logger.WithName("fakeshop")

	server := &http.Server{
		Addr:              listen,
		Handler:           fakeshop.New(options).Handler(),
		ReadHeaderTimeout: time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(err, "server shutdown failed")
		}
	}()

	logger.Info("stub server listening", "address", listen, "adminEmail", options.AdminEmail)

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// run executes a command, only its result is written to stdout so it can
// be captured by a shell.
func run(ctx context.Context, command string, options *Options, config *api.TestConfig, stdout, stderr io.Writer) error {
	logger := log.Log.WithName(command)

	client := api.NewAPIClientWithConfig(config).WithLogWriter(stderr)

	switch command {
	case "wait":
		if err := waitForAPI(ctx, logger, client, options.Timeout); err != nil {
			return fmt.Errorf("API at %s did not become ready: %w", config.BaseURL, err)
		}

		logger.Info("API ready", "baseURL", config.BaseURL)
	case "admin-token":
		token, err := adminToken(ctx, client, config, options.Timeout)
		if err != nil {
			return err
		}

		fmt.Fprintln(stdout, token)
	case "serve":
		return serve(ctx, logger, options.Listen)
	default:
		return ErrUsage
	}

	return nil
}

func main() {
	config, err := api.LoadTestConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var options Options

	options.AddFlags(config, pflag.CommandLine)

	pflag.Parse()

	log.SetLogger(zap.New(zap.UseFlagOptions(&options.zap)))

	if pflag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, ErrUsage)
		os.Exit(1)
	}

	options.Apply(config)

	ctx := cr.SetupSignalHandler()

	if err := run(ctx, pflag.Arg(0), &options, config, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
