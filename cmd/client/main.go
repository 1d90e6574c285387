// Package main is an interactive shell for the medicine tracker API.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/NikhilYadav04/pillbin-v2/internal/client"
)

var (
	version   string
	buildDate string
)

// repl runs the interactive shell loop, accepting commands to manage medicines.
func repl(c *client.Client) {
	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	prompter := &client.Prompter{In: scanner, Out: os.Stdout}

	for {
		fmt.Print("pillbin> ")
		if !scanner.Scan() {
			break
		}
		args := strings.Fields(scanner.Text())
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, list [page], add, get <id>, delete <id>, purge <id>, delete-expired, empty-bin, profile, exit")
		case "list":
			page := 1
			if len(args) > 1 {
				page, _ = strconv.Atoi(args[1])
			}
			inv, err := c.Inventory(ctx, page, 0)
			if err != nil {
				fmt.Println(err)
				continue
			}
			client.PrintInventory(os.Stdout, inv)
		case "add":
			m, err := c.AddMedicine(ctx, prompter.Medicine())
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Added %s (%s)\n", m.ID, m.Status)
		case "get":
			if len(args) < 2 {
				fmt.Println("Usage: get <id>")
				continue
			}
			m, err := c.Medicine(ctx, args[1])
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("%s\nStatus: %s\nExpires: %s\nDosage: %s\nNotes: %s\n",
				m.Name, m.Status, m.ExpiryDate.Format("2006-01-02"), m.Dosage, m.Notes)
		case "delete", "purge":
			if len(args) < 2 {
				fmt.Printf("Usage: %s <id>\n", args[0])
				continue
			}
			res, err := c.DeleteMedicine(ctx, args[1], args[0] == "purge")
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Disposed of a medicine that was %s. Total disposed: %d\n", res.Status, res.DisposedCount)
		case "delete-expired":
			res, err := c.DeleteAllExpired(ctx)
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Disposed of %d expired medicines\n", res.Affected)
		case "empty-bin":
			res, err := c.EmptyBin(ctx)
			if err != nil {
				fmt.Println(err)
				continue
			}
			fmt.Printf("Permanently removed %d medicines\n", res.Affected)
		case "profile":
			u, err := c.Profile(ctx)
			if err != nil {
				fmt.Println(err)
				continue
			}
			client.PrintProfile(os.Stdout, u)
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// main parses command-line flags and dispatches to the register or shell commands.
func main() {
	var (
		cmd         string
		baseURL     string
		caFile      string
		sessionFile string
		email       string
		fullName    string
		showVer     bool
	)

	flag.StringVar(&cmd, "cmd", "", "command: register | shell")
	flag.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	flag.StringVar(&caFile, "ca", "", "path to CA cert for a self-signed server")
	flag.StringVar(&sessionFile, "session", "session.json", "path to the local session file")
	flag.StringVar(&email, "email", "", "email for registration")
	flag.StringVar(&fullName, "name", "", "full name for registration")
	flag.BoolVar(&showVer, "version", false, "show build version and date")
	flag.Parse()

	if showVer {
		fmt.Printf("PillBin Client\nVersion: %s\nBuild Date: %s\n", version, buildDate)
		return
	}

	httpClient, err := client.NewHTTPClient(caFile)
	if err != nil {
		log.Fatal(err)
	}
	session, err := client.LoadSession(sessionFile)
	if err != nil {
		log.Fatal(err)
	}
	if session.BaseURL == "" || baseURL != "http://localhost:8080" {
		session.BaseURL = strings.TrimRight(baseURL, "/")
	}
	c := &client.Client{HTTP: httpClient, Session: session}

	switch cmd {
	case "register":
		if email == "" {
			log.Fatal("please provide -email=address")
		}
		u, err := c.Register(context.Background(), email, fullName)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Registration successful. Logged in as %s.\n", u.Email)
	case "shell":
		if !session.LoggedIn() {
			log.Fatal("not registered; run with -cmd=register first")
		}
		repl(c)
	default:
		log.Fatalf("unknown command: %s", cmd)
	}
}
