package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"railscan/internal/config"
	"railscan/internal/consumer"
	"railscan/internal/pipeline"
	"railscan/internal/server"
)

var queueSize int

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored results and accept analysis requests",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	serveCommand.Flags().IntVar(&queueSize, "queue-size", 16, "Pending analysis requests before new ones are refused")
}

func runServe() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	logrus.Infof("config: %+v", conf)

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	s, err := newStack(ctx, conf, true)
	if err != nil {
		logrus.Fatalf("init pipeline error, %s", err.Error())
	}
	defer s.Close()

	queue := pipeline.NewQueue(ctx, s.runner, queueSize)
	queue.Start()
	defer queue.Stop()

	if conf.Consumer.Enabled {
		c, err := consumer.NewConsumer(ctx, conf.Consumer, queue)
		if err != nil {
			logrus.Fatalf("newConsumer error, %s", err.Error())
		}
		if err := c.Start(); err != nil {
			logrus.Fatalf("start consumer error, %s", err.Error())
		}
		defer c.Stop()
	}

	srv := server.NewServer(ctx, conf.Server, s.store, queue)
	go func() {
		if err := srv.Start(); err != nil {
			logrus.Fatal(err)
		}
	}()

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	<-termChan
	logrus.Infof("server is shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("server forced to shutdown: %v", err)
	}
}
