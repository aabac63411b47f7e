package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/stoik/emailapi/internal/logging"
	"github.com/stoik/emailapi/services/web-client/internal/web"
)

func main() {
	port := os.Getenv("PORT")
	if len(os.Args) > 1 {
		port = os.Args[1]
	}
	if port == "" {
		port = "9000"
	}

	logger, err := logging.New(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%s", port)
	logger.WithFields(logrus.Fields{"addr": addr}).Info("Starting web client")
	fmt.Printf("Listening on %s\n", addr)

	if err := http.ListenAndServe(addr, web.NewRouter()); err != nil {
		logger.WithError(err).Fatal("Web client stopped")
	}
}
