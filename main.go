package main

import (
	"github.com/sirupsen/logrus"

	"github.com/timvw/rao-eval/cmd"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	logrus.SetLevel(logrus.InfoLevel)

	cmd.Execute()
}
