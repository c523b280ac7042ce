package service_test

import (
	"context"
	"fmt"
	"log"

	"github.com/avoronkov42/backoffice/internal/db/memorystorage"
	"github.com/avoronkov42/backoffice/internal/service"
)

func ExampleService() {
	db, err := memorystorage.New()
	if err != nil {
		log.Fatal(err)
	}

	categories := service.New(db)
	ctx := context.Background()

	created, err := categories.Create(ctx, "Travel")
	if err != nil {
		log.Fatal(err)
	}

	deleted, err := categories.SoftDelete(ctx, created.ID)
	if err != nil {
		log.Fatal(err)
	}

	remaining, err := categories.List(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(deleted.Deleted)
	fmt.Println(len(remaining))
	// Output:
	// true
	// 0
}
