package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/user"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/Skotchmaster/store_api/internal/config"
	"github.com/Skotchmaster/store_api/internal/db"
	"github.com/Skotchmaster/store_api/internal/repo"
	"github.com/Skotchmaster/store_api/internal/service"
	"github.com/Skotchmaster/store_api/internal/transport"
)

const (
	defaultEmail = "admin@admin.ru"
	defaultPhone = "+70000000000"
)

func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")

	fmt.Println("\nCreating an administrator.")
	in := bufio.NewReader(os.Stdin)
	defaultName := osUserName()

	req := transport.RegisterRequest{
		Email:     prompt(in, "Email", defaultEmail),
		FirstName: prompt(in, "First name", defaultName),
		LastName:  prompt(in, "Last name", defaultName),
		Phone:     prompt(in, "Phone", defaultPhone),
		Password1: secret(in, "Password: "),
		Password2: secret(in, "Repeat password: "),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	defer db.Close(gdb)
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	users := &service.UserService{Repo: &repo.GormRepo{DB: gdb}}
	admin, err := users.CreateAdmin(ctx, req)
	if err != nil {
		fmt.Println("\nThe administrator was not created:")
		for _, msg := range strings.Split(service.Message(err, err.Error()), "; ") {
			fmt.Printf("- %s\n", msg)
		}
		return
	}

	fmt.Println("\nAdministrator created.")
	fmt.Printf("Email: %s\n", admin.Email)
	fmt.Printf("Name: %s %s\n", admin.FirstName, admin.LastName)
}

func prompt(in *bufio.Reader, label, def string) string {
	fmt.Printf("%s (default %s): ", label, def)
	line, _ := in.ReadString('\n')
	if v := strings.TrimSpace(line); v != "" {
		return v
	}
	return def
}

// secret reads without echo when stdin is a terminal.
func secret(in *bufio.Reader, label string) string {
	fmt.Print(label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return string(b)
		}
	}
	line, _ := in.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

func osUserName() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "admin"
}
