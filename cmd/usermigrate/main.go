// Command usermigrate moves user accounts between the database and a flat
// JSON document. It exists for one-time migrations from (or to) legacy
// JSON user stores; the database remains the only live source of truth.
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"fileshare/internal/database"
	"fileshare/internal/models"
	"fileshare/internal/services"
)

type userDocument struct {
	ExportID   string        `json:"exportId"`
	ExportedAt time.Time     `json:"exportedAt"`
	Users      []exportedUser `json:"users"`
}

type exportedUser struct {
	Username     string    `json:"username"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}

func main() {
	dbPath := flag.String("db", "./storage.db", "path to the SQLite database")
	exportPath := flag.String("export", "", "write all users to the given JSON file")
	importPath := flag.String("import", "", "load users from the given JSON file")
	flag.Parse()

	if (*exportPath == "") == (*importPath == "") {
		fmt.Fprintln(os.Stderr, "usermigrate: exactly one of -export or -import is required")
		os.Exit(2)
	}

	db, err := database.New(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "usermigrate: open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		fmt.Fprintf(os.Stderr, "usermigrate: migrate database: %v\n", err)
		os.Exit(1)
	}

	if *exportPath != "" {
		err = exportUsers(db, *exportPath)
	} else {
		err = importUsers(db, *importPath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "usermigrate: %v\n", err)
		os.Exit(1)
	}
}

func exportUsers(db *sql.DB, path string) error {
	rows, err := db.Query("SELECT username, password_hash, created_at FROM users ORDER BY id")
	if err != nil {
		return err
	}
	defer rows.Close()

	doc := userDocument{
		ExportID:   uuid.New().String(),
		ExportedAt: time.Now().UTC(),
	}
	for rows.Next() {
		var u exportedUser
		if err := rows.Scan(&u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
			return err
		}
		doc.Users = append(doc.Users, u)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	fmt.Printf("exported %d users (export %s) to %s\n", len(doc.Users), doc.ExportID, path)
	return nil
}

func importUsers(db *sql.DB, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var doc userDocument
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return err
	}

	userSvc := services.NewUserService(db)
	imported, skipped := 0, 0
	for _, u := range doc.Users {
		if u.Username == "" || u.PasswordHash == "" {
			skipped++
			continue
		}
		if _, err := userSvc.GetByUsername(u.Username); err == nil {
			skipped++
			continue
		} else if err != services.ErrUserNotFound {
			return err
		}

		createdAt := u.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		user := models.User{Username: u.Username, PasswordHash: u.PasswordHash, CreatedAt: createdAt}
		if _, err := db.Exec("INSERT INTO users(username, password_hash, created_at) VALUES(?, ?, ?)",
			user.Username, user.PasswordHash, user.CreatedAt); err != nil {
			return err
		}
		imported++
	}

	fmt.Printf("imported %d users, skipped %d, from %s\n", imported, skipped, path)
	return nil
}
