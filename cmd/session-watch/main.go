// Диагностическая утилита сессионного адаптера.
//
// Запускает адаптер поверх ручного источника identity и HTTP-клиента
// профилей, печатает каждое изменение прав доступа. Команды читаются
// из stdin:
//
//	login <email>   — вход: источник доставляет identity
//	logout          — выход: источник доставляет nil
//	refresh         — синхронная перечитка профиля
//	name <имя>      — смена отображаемого имени
//	status          — печать текущего снимка
//
// Завершение — SIGINT или EOF.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/magabrotheeeer/news-platform/internal/clients/profile"
	"github.com/magabrotheeeer/news-platform/internal/entitlement"
	"github.com/magabrotheeeer/news-platform/internal/lib/sl"
	"github.com/magabrotheeeer/news-platform/internal/models"
	"github.com/magabrotheeeer/news-platform/internal/session"
)

func main() {
	baseURL := flag.String("base", "http://localhost:8080", "адрес API платформы")
	token := flag.String("token", "", "JWT для мутаций профиля (опционально)")
	interval := flag.Duration("interval", session.DefaultRevalidateInterval, "период фоновой ревалидации")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	source := session.NewManualSource()
	profiles := profile.NewClient(*baseURL, *token)

	adapter, err := session.New(source, profiles, logger, *interval)
	if err != nil {
		logger.Error("failed to start session adapter", sl.Err(err))
		os.Exit(1)
	}
	defer adapter.Close()

	unsubscribe := adapter.OnChange(func(st entitlement.Status) {
		logger.Info("entitlement changed",
			slog.Bool("authenticated", st.IsAuthenticated),
			slog.Bool("premium", st.IsPremium))
	})
	defer unsubscribe()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	logger.Info("session-watch started", slog.String("base", *baseURL), slog.Duration("interval", *interval))

	for {
		select {
		case <-ctx.Done():
			logger.Info("session-watch stopped")
			return
		case line, ok := <-lines:
			if !ok {
				logger.Info("stdin closed, exiting")
				return
			}
			runCommand(ctx, adapter, source, logger, line)
		}
	}
}

func runCommand(ctx context.Context, adapter *session.Adapter, source *session.ManualSource, logger *slog.Logger, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	switch fields[0] {
	case "login":
		if len(fields) < 2 {
			fmt.Println("usage: login <email>")
			return
		}
		source.Emit(&models.Identity{Email: fields[1]})
	case "logout":
		source.Emit(nil)
	case "refresh":
		if err := adapter.Refresh(opCtx); err != nil {
			logger.Warn("refresh failed", sl.Err(err))
		}
	case "name":
		if len(fields) < 2 {
			fmt.Println("usage: name <display name>")
			return
		}
		if err := adapter.UpdateDisplayName(opCtx, strings.Join(fields[1:], " ")); err != nil {
			logger.Warn("update display name failed", sl.Err(err))
		}
	case "status":
		st := adapter.Entitlement()
		id := adapter.Identity()
		email := "<anonymous>"
		if id != nil {
			email = id.Email
		}
		fmt.Printf("identity=%s authenticated=%t premium=%t\n", email, st.IsAuthenticated, st.IsPremium)
	default:
		fmt.Println("commands: login <email> | logout | refresh | name <имя> | status")
	}
}
