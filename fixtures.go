package main

import (
	"context"
	"log"

	"github.com/yjkogan/stuff-tracker/internal/back"
)

func loadFixtures(b *back.Back) error {
	return b.LoadFixtures(context.Background())
}

func rerank(b *back.Back, category string) error {
	if err := b.Rerank(context.Background(), category); err != nil {
		return err
	}

	log.Printf("info: reranked %s", category)

	return nil
}

func addUser(b *back.Back, name, password string) error {
	_, err := b.CreateUser(context.Background(), name, password)
	return err
}
