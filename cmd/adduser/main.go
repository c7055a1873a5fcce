package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/storage"
	"github.com/officialcoder01/boilerplate-project-expensetracker/internal/tracker"
)

const defaultDBPath = "expenses.db"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	emailFlag := fs.String("email", "", "Email (optional, will prompt if omitted)")
	dbPath := fs.String("db", defaultDBPath, "Path to database file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> [-email <email>] [-db <db_path>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: user")
	}

	email := *emailFlag
	if email == "" {
		var err error
		email, err = readLine(stdin, stdout, "Email: ")
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}

	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email cannot be empty")
	}

	// DB_PATH applies only when -db was left at its default.
	if path := os.Getenv("DB_PATH"); path != "" && *dbPath == defaultDBPath {
		*dbPath = path
	}

	db, err := storage.NewDB(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	// Check if user already exists
	if existing, err := db.GetUserByUsername(ctx, strings.TrimSpace(*username)); err == nil && existing != nil {
		return fmt.Errorf("user %s already exists", existing.Username)
	}
	if existing, err := db.GetUserByEmail(ctx, strings.TrimSpace(email)); err == nil && existing != nil {
		return fmt.Errorf("email %s already exists", existing.Email)
	}

	log := logrus.New()
	log.SetOutput(stderr)
	log.SetLevel(logrus.WarnLevel)

	svc := tracker.NewService(db, db, log, "")
	user, err := svc.CreateUser(ctx, tracker.UserInput{Username: *username, Email: email})
	if err != nil {
		if errors.Is(err, tracker.ErrValidation) {
			return fmt.Errorf("invalid user: %w", err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %s\n", user.Username, user.ID)
	return nil
}

// readLine prompts on stdout and reads one line. A terminal on stdin gets
// line editing; anything else (pipes, tests) is read as plain text.
func readLine(stdin io.Reader, stdout io.Writer, prompt string) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		state, err := term.MakeRaw(int(f.Fd()))
		if err != nil {
			return "", err
		}
		defer term.Restore(int(f.Fd()), state)

		t := term.NewTerminal(struct {
			io.Reader
			io.Writer
		}{f, stdout}, prompt)
		return t.ReadLine()
	}

	fmt.Fprint(stdout, prompt)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
