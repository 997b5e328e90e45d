package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := Execute(); err != nil {
		logrus.WithError(err).Error("brontidectl failed")
		os.Exit(1)
	}
}
