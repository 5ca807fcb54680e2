package app

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Astemirdum/library-web/pkg/kafka"
	"github.com/Astemirdum/library-web/pkg/logger"
	"github.com/Astemirdum/library-web/web/config"
	"github.com/Astemirdum/library-web/web/internal/catalog"
	"github.com/Astemirdum/library-web/web/internal/circulation"
	"github.com/Astemirdum/library-web/web/internal/detail"
	"github.com/Astemirdum/library-web/web/internal/handler"
	"github.com/Astemirdum/library-web/web/internal/i18n"
	"github.com/Astemirdum/library-web/web/internal/remotelist"
	"github.com/Astemirdum/library-web/web/internal/server"
	"github.com/Astemirdum/library-web/web/internal/service/books"
	"github.com/Astemirdum/library-web/web/internal/service/borrow"
	"github.com/Astemirdum/library-web/web/internal/service/users"
	"github.com/Astemirdum/library-web/web/internal/session"
	"github.com/Astemirdum/library-web/web/internal/toast"
	"github.com/Astemirdum/library-web/web/internal/workspace"
	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

func Run(cfg config.Config) {
	log := logger.NewLogger(cfg.Log, "web")

	var producer sarama.AsyncProducer
	if cfg.Kafka.Enabled() {
		p, err := kafka.NewAsyncProducer(cfg.Kafka)
		if err != nil {
			log.Error("kafka producer, ui events disabled", zap.Error(err))
		} else {
			producer = p
			go func() {
				for err := range p.Errors() {
					log.Warn("ui event", zap.Error(err))
				}
			}()
		}
	}

	messages, err := i18n.Load(cfg.UI.DefaultLocale)
	if err != nil {
		log.Fatal("i18n", zap.Error(err))
	}

	bookSvc := books.NewService(log.Named("books"), cfg.Backend)
	loanSvc := borrow.NewService(log.Named("borrow"), cfg.Backend)
	store := workspace.NewStore(NewFactory(log, cfg, bookSvc, loanSvc), cfg.UI.MaxWorkspaces, cfg.UI.WorkspaceTTL, log.Named("workspace"))

	h, err := handler.New(log, cfg.Server, handler.Deps{
		Books:    bookSvc,
		Users:    users.NewService(log.Named("users"), cfg.Backend),
		Store:    store,
		Messages: messages,
		Events:   handler.NewEventLog(producer, cfg.Kafka.EventsTopic),
	})
	if err != nil {
		log.Fatal("handler", zap.Error(err))
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	go store.Run(ctx)

	srv := server.NewServer(cfg.Server, h.NewRouter())
	log.Info("http server start ON: ",
		zap.String("addr",
			net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)))
	go func() {
		if err := srv.Run(); err != nil {
			log.Error("server run", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	termSig := <-sig

	log.Debug("Graceful shutdown", zap.Any("signal", termSig))

	closeCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := srv.Stop(closeCtx); err != nil {
		log.DPanic("srv.Stop", zap.Error(err))
	}
	stop()
	store.Close()
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Warn("kafka producer close", zap.Error(err))
		}
	}
	log.Info("Graceful shutdown finished")
}

// NewFactory builds the catalog, detail and borrow/return sessions of a
// workspace. Every fetch they start carries the identity's token.
func NewFactory(log *zap.Logger, cfg config.Config, bookSvc *books.Service, loanSvc *borrow.Service) workspace.Factory {
	return func(id session.Identity, toasts *toast.Queue) (*workspace.Workspace, error) {
		opts := []remotelist.Option{
			remotelist.WithContext(session.WithToken(context.Background(), id.Token())),
			remotelist.WithDebounce(cfg.UI.SearchDebounce),
			remotelist.WithTimeout(cfg.Backend.Timeout),
			remotelist.WithLogger(log.Named("list")),
		}
		cat := catalog.NewSession(bookSvc, id, opts...)
		return &workspace.Workspace{
			Catalog:     cat,
			Detail:      detail.NewSession(bookSvc, cat, toasts, log.Named("detail")),
			Circulation: circulation.NewSession(bookSvc, loanSvc, toasts, id, log.Named("circulation"), opts...),
		}, nil
	}
}
