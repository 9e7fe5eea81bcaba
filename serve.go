package main

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/yjkogan/stuff-tracker/internal/back"
	"github.com/yjkogan/stuff-tracker/internal/config"
	"github.com/yjkogan/stuff-tracker/internal/web"
)

func serve(b *back.Back, conf *config.Config) error {
	done := make(chan struct{})
	signaled := make(chan os.Signal, 1)
	signal.Notify(signaled, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	server := web.NewServer(b, conf)
	wg.Add(1)
	go server.Serve(&wg, done)

	sig := <-signaled
	log.Printf("info: received signal %d", sig)

	close(done)
	wg.Wait()

	log.Print("info: shutdown complete")

	return nil
}
