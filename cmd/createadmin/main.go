// The createadmin tool provisions a back-office administrator account:
// it hashes the given password with argon2id and inserts the user into the
// configured storage backend. There is no self-service registration in the
// service itself, so this is the only way accounts come into existence.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/avoronkov42/backoffice/internal/db/jsondb"
	"github.com/avoronkov42/backoffice/internal/db/postgresdb"
	"github.com/avoronkov42/backoffice/internal/models"
	"github.com/avoronkov42/backoffice/internal/passhash"
)

func main() {
	var (
		mail          string
		password      string
		databaseDSN   string
		dbFileName    string
		migrationsDir string
	)

	flag.StringVar(&mail, "mail", "", "mail of the administrator to create")
	flag.StringVar(&password, "password", "", "plaintext password of the administrator")
	flag.StringVar(&databaseDSN, "d", "", "a string with the database connection details")
	flag.StringVar(&dbFileName, "f", "db.json", "JSON file name with database")
	flag.StringVar(&migrationsDir, "m", "cmd/backoffice/migrations", "directory with goose migrations")
	flag.Parse()

	if mail == "" || password == "" {
		log.Fatalln("Both -mail and -password are required")
	}

	ctx := context.Background()

	db, err := openStorage(ctx, databaseDSN, dbFileName, migrationsDir)
	if err != nil {
		log.Fatalln("Unable to open the storage:", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Fatalln("Unable to close the storage:", err)
		}
	}()

	encoded, err := passhash.Hash(password)
	if err != nil {
		log.Fatalln("Unable to hash the password:", err)
	}

	usr, err := db.CreateUser(ctx, &models.User{
		Mail:     mail,
		Password: encoded,
	})
	if err != nil {
		log.Fatalln("Unable to create the user:", err)
	}

	log.Printf("Created administrator #%d (%s)", usr.ID, usr.Mail)
}

type userStorage interface {
	CreateUser(ctx context.Context, usr *models.User) (*models.User, error)
	Close() error
}

func openStorage(
	ctx context.Context,
	databaseDSN string,
	dbFileName string,
	migrationsDir string,
) (userStorage, error) {
	if databaseDSN != "" {
		return postgresdb.New(ctx, databaseDSN, 10*time.Second, migrationsDir)
	}

	return jsondb.New(dbFileName)
}
