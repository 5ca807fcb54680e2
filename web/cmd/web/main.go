package main

import (
	"context"
	"fmt"
	stdLog "log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/Astemirdum/library-web/pkg/kafka"
	"github.com/Astemirdum/library-web/pkg/logger"
	"github.com/Astemirdum/library-web/web/app"
	"github.com/Astemirdum/library-web/web/config"
	"github.com/Astemirdum/library-web/web/internal/catalog"
	"github.com/Astemirdum/library-web/web/internal/handler"
	"github.com/Astemirdum/library-web/web/internal/model"
	"github.com/Astemirdum/library-web/web/internal/remotelist"
	"github.com/Astemirdum/library-web/web/internal/service/books"
	"github.com/Astemirdum/library-web/web/internal/service/users"
	"github.com/Astemirdum/library-web/web/internal/session"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLog.Println("load envs from .env:", err)
	}
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var backend string
	root := &cobra.Command{
		Use:          "library-web",
		Short:        "Library web frontend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.Run(loadConfig(backend, false))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&backend, "backend", "", "backend base URL (overrides BACKEND_URI)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the web frontend",
		RunE:  root.RunE,
	}
	root.AddCommand(serve, newBooksCmd(&backend), newLoginCmd(&backend), newEventsCmd(&backend))
	return root
}

func loadConfig(backend string, quiet bool) config.Config {
	opts := []config.Option{config.WithWriteTimeout(time.Minute)}
	if backend != "" {
		opts = append(opts, config.WithBackendURL(backend))
	}
	if quiet {
		opts = append(opts, config.WithLogLevel(zapcore.WarnLevel))
	}
	return config.NewConfig(opts...)
}

func newBooksCmd(backend *string) *cobra.Command {
	var (
		search     string
		categories []string
		company    string
		page       int
		token      string
	)
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Fetch one catalog page and print it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig(*backend, true)
			log := logger.NewLogger(cfg.Log, "cli")
			id := session.FromToken(token, time.Now())
			ctx := session.WithToken(cmd.Context(), id.Token())

			s := catalog.NewSession(books.NewService(log, cfg.Backend), id,
				remotelist.WithContext(ctx),
				remotelist.WithTimeout(cfg.Backend.Timeout),
				remotelist.WithDebounce(0),
			)
			defer s.Close()
			s.SetSearchTerm(search)
			s.SetCategories(categories)
			if company != "" {
				if _, err := s.SetCompany(company); err != nil {
					return err
				}
			}
			s.EnsureLoaded()
			// the page can only be clamped against a known total
			snap, err := s.Settle(ctx)
			if err != nil {
				return err
			}
			if page > 1 && snap.Err == nil {
				s.SetPage(page)
				if snap, err = s.Settle(ctx); err != nil {
					return err
				}
			}
			return printBooks(cmd, catalog.BuildListView(snap, s.ShowCompany()))
		},
	}
	f := cmd.Flags()
	f.StringVar(&search, "search", "", "title, author or code")
	f.StringSliceVar(&categories, "category", nil, "category filter, repeatable")
	f.StringVar(&company, "company", "", "company filter (anonymous only)")
	f.IntVar(&page, "page", 1, "page number")
	f.StringVar(&token, "token", os.Getenv("LIBRARY_TOKEN"), "session token")
	return cmd
}

func printBooks(cmd *cobra.Command, v catalog.ListView) error {
	out := cmd.OutOrStdout()
	switch {
	case v.Error != "":
		return errors.Errorf("fetch books: %s", v.Error)
	case v.Empty:
		fmt.Fprintln(out, "no books match the filters")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tAUTHOR\tCATEGORIES\tCOPIES\tSTATUS\tCOMPANY")
	for _, c := range v.Cards {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			c.Title, c.Author, strings.Join(c.Categories, ", "), c.CopiesCount, c.Status, c.Company)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "page %d of %d\n", v.CurrentPage, v.TotalPages)
	return nil
}

func newLoginCmd(backend *string) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig(*backend, true)
			log := logger.NewLogger(cfg.Log, "cli")

			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			password, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Fprintln(cmd.ErrOrStderr())
			if err != nil {
				return errors.Wrap(err, "read password")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Backend.Timeout)
			defer cancel()
			resp, _, err := users.NewService(log, cfg.Backend).Login(ctx, model.LoginForm{
				Email:    email,
				Password: strings.TrimSpace(string(password)),
			})
			if err != nil {
				return errors.Wrap(err, "login")
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newEventsCmd(backend *string) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Tail the UI events topic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := loadConfig(*backend, true)
			if !cfg.Kafka.Enabled() {
				return errors.New("KAFKA_ADDRS is not set")
			}
			log := logger.NewLogger(cfg.Log, "cli")

			cg, err := kafka.NewConsumerGroup(cfg.Kafka, group)
			if err != nil {
				return errors.Wrap(err, "join consumer group")
			}
			defer cg.Close()
			go func() {
				for err := range cg.Errors() {
					log.Warn("consumer group", zap.Error(err))
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			consumer := handler.NewConsumer(func(_ context.Context, ev model.UIEvent) error {
				_, err := fmt.Fprintf(out, "%s\t%s\t%s\t%s\t%s\n",
					ev.At.Format(time.RFC3339), ev.Action, ev.User, ev.Company, firstNonEmpty(ev.CopyID, ev.BookID, ev.GroupID))
				return err
			}, log)
			return kafka.Consume(ctx, cg, consumer, cfg.Kafka.EventsTopic)
		},
	}
	cmd.Flags().StringVar(&group, "group", kafka.DefaultTailGroup, "consumer group id")
	return cmd
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v != "" {
			return v
		}
	}
	return "-"
}
