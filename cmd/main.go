package main

import (
	"fmt"
	"os"

	"github.com/richard-senior/h2h/internal/app"
	"github.com/richard-senior/h2h/internal/config"
	"github.com/richard-senior/h2h/internal/logger"
	"github.com/richard-senior/h2h/pkg/server"
	"github.com/richard-senior/h2h/pkg/tools"
	"github.com/richard-senior/h2h/pkg/transport"
)

func main() {
	logger.SetShowDateTime(true)

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// stdout is the protocol channel so logs go to the file only
	logger.SetLogFile(cfg.LogFile)
	if err := logger.SetLogOutput('f'); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	defer logger.Close()
	if level, err := logger.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	logger.Info("Starting h2h MCP server")
	if len(os.Args) > 1 {
		logger.Info("Ignoring command line arguments:", len(os.Args)-1)
		for i, arg := range os.Args[1:] {
			logger.Debug(fmt.Sprintf("Argument %d:", i+1), arg)
		}
	}

	a, err := app.New(cfg)
	if err != nil {
		logger.Error("Failed to start services:", err)
		os.Exit(1)
	}
	defer a.Close()
	tools.Configure(a.Deps())

	s := server.InitInstance(transport.NewStdioTransport())
	if err := s.Start(); err != nil {
		logger.Error("Server error:", err)
		a.Close()
		os.Exit(1)
	}

	logger.Info("MCP server shutting down")
}
