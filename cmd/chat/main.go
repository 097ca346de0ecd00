// Command chat is a terminal client for the reservation assistant.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"padelchat/internal/chat"
	"padelchat/internal/client"
	"padelchat/internal/config"
	"padelchat/internal/logger"
	"padelchat/internal/repository"
	"padelchat/internal/service"
	"padelchat/internal/session"

	"github.com/google/uuid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	backendURL := flag.String("backend", getBackendURL(cfg), "reservation backend base URL")
	local := flag.Bool("local", false, "run against an in-process backend instead of -backend")
	userName := flag.String("user", cfg.Chat.DefaultUserName, "user name for reservations")
	flag.Parse()

	appLog := logger.NewNoOpLogger()
	if cfg.Logging.Level == "debug" {
		appLog = logger.NewStructured("debug", "console")
	}
	defer appLog.Sync()

	var backend chat.Backend
	if *local {
		backend = service.NewPadelService(repository.NewMemoryRepository(repository.DefaultCourts()), appLog)
	} else {
		backend = client.NewToolsClient(config.BackendConfig{BaseURL: *backendURL, Timeout: cfg.Backend.Timeout}, appLog)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Invalid chat time zone: %v", err)
	}
	conv := chat.NewConversation(backend, session.NewMemoryStore(0), appLog,
		chat.WithExtractor(chat.NewExtractor(chat.WithLocation(loc))))
	sess := conv.Session(uuid.NewString())

	fmt.Println("🎾 Padel reservations. Type \"help\" for examples, /name <you>, /reset or /quit.")
	fmt.Printf("Booking as %s\n", *userName)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return
		case line == "/reset":
			if err := sess.Reset(ctx); err != nil {
				fmt.Printf("Could not reset: %v\n", err)
				continue
			}
			fmt.Println("Conversation reset.")
			continue
		case strings.HasPrefix(line, "/name"):
			name := strings.TrimSpace(strings.TrimPrefix(line, "/name"))
			if name == "" {
				fmt.Printf("Booking as %s\n", *userName)
				continue
			}
			*userName = name
			fmt.Printf("Booking as %s\n", *userName)
			continue
		}

		turnCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		reply := sess.Submit(turnCtx, line, *userName)
		cancel()
		fmt.Println(reply.Message)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("Failed to read input: %v", err)
	}
}

func getBackendURL(cfg *config.Config) string {
	if cfg.Backend.BaseURL != "" {
		return cfg.Backend.BaseURL
	}
	return fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
}
