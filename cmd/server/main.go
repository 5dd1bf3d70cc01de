// Command server starts the dataflow-studio workflow engine HTTP API.
//
// Usage:
//
//	server [flags]
//
// Flags:
//
//	-addr string
//	    Server address (default ":8080")
//	-max-execution-time duration
//	    Maximum workflow execution time (default 5m)
//	-upload-dir string
//	    Directory for uploaded/output CSV files; empty uses an in-memory store
//
// The server exposes:
//
//	POST /api/upload           - Upload a CSV file
//	POST /api/workflows/run    - Execute a workflow
//	GET  /api/download/{id}    - Download an Output node's written file
//	GET  /api/nodes            - List the node catalog
//	GET  /health                - Health check
//	GET  /health/live           - Liveness probe
//	GET  /health/ready          - Readiness probe
//	GET  /metrics                - Prometheus metrics
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dataflow-studio/engine/pkg/config"
	"github.com/dataflow-studio/engine/pkg/httpapi"
	"github.com/dataflow-studio/engine/pkg/node"
	"github.com/dataflow-studio/engine/pkg/storage"
)

func main() {
	addr := flag.String("addr", ":8080", "Server address")
	maxExecutionTime := flag.Duration("max-execution-time", 5*time.Minute, "Maximum workflow execution time")
	uploadDir := flag.String("upload-dir", "", "Directory for uploaded/output CSV files; empty uses an in-memory store")
	flag.Parse()

	httpConfig := httpapi.DefaultConfig()
	httpConfig.Address = *addr

	engineConfig := config.Default()
	engineConfig.MaxExecutionTime = *maxExecutionTime

	var store node.TableStore
	if *uploadDir != "" {
		fileStore, err := storage.NewFileStore(*uploadDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create file store: %v\n", err)
			os.Exit(1)
		}
		store = fileStore
	} else {
		store = storage.NewMemoryStore()
	}

	srv, err := httpapi.New(httpConfig, engineConfig, node.DefaultRegistry(), store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create server: %v\n", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		fmt.Printf("Starting dataflow-studio workflow engine on %s\n", *addr)
		fmt.Printf("Health check: http://localhost%s/health\n", *addr)
		fmt.Printf("Node catalog: http://localhost%s/api/nodes\n", *addr)
		fmt.Println("Press Ctrl+C to shutdown")

		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal: %v\n", sig)
		fmt.Println("Shutting down gracefully...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Server stopped")
	}
}
