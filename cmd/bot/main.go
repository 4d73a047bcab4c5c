// Command bot runs the Telegram front-end: operators send scanned documents
// in chat and trigger processing with /nota or /comprovante.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/doppio-labs/fiscaldoc/cmd/api"
	"github.com/doppio-labs/fiscaldoc/internal/domain/pipeline/service"
	"github.com/doppio-labs/fiscaldoc/pkg/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded, using process environment")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Telegram.Token == "" {
		logger.Error("TELEGRAM_BOT_TOKEN is required")
		os.Exit(1)
	}

	deps, err := api.InitDependencies(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer deps.Cleanup()

	tg, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Error("failed to connect to telegram", "error", err)
		os.Exit(1)
	}
	logger.Info("bot authorized", "username", tg.Self.UserName)

	b := &bot{
		tg:            tg,
		pipeline:      deps.Pipeline,
		uploadDir:     cfg.Server.UploadDir,
		allowedChatID: cfg.Telegram.AllowedChatID,
		pending:       make(map[int64][]service.SubmissionFile),
		logger:        logger,
	}
	b.run()
}

type bot struct {
	tg            *tgbotapi.BotAPI
	pipeline      *service.Service
	uploadDir     string
	allowedChatID int64
	// pending collects files per chat until a processing command arrives.
	pending map[int64][]service.SubmissionFile
	logger  *slog.Logger
}

func (b *bot) run() {
	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 60

	for update := range b.tg.GetUpdatesChan(updateCfg) {
		if update.Message == nil {
			continue
		}
		msg := update.Message

		if b.allowedChatID != 0 && msg.Chat.ID != b.allowedChatID {
			b.logger.Warn("message from unauthorized chat", "chat_id", msg.Chat.ID)
			continue
		}

		if err := b.handle(msg); err != nil {
			b.logger.Error("failed to handle message", "chat_id", msg.Chat.ID, "error", err)
			b.reply(msg.Chat.ID, "Erro ao processar. Tente novamente.")
		}
	}
}

func (b *bot) handle(msg *tgbotapi.Message) error {
	switch {
	case msg.Document != nil:
		return b.stageFile(msg.Chat.ID, msg.Document.FileID, msg.Document.FileName)
	case len(msg.Photo) > 0:
		// Largest rendition is last.
		photo := msg.Photo[len(msg.Photo)-1]
		return b.stageFile(msg.Chat.ID, photo.FileID, "foto.jpg")
	case msg.IsCommand():
		return b.handleCommand(msg)
	}
	return nil
}

func (b *bot) handleCommand(msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "nota":
		return b.process(msg, service.KindInvoice)
	case "comprovante":
		return b.process(msg, service.KindReceipt)
	case "cancelar":
		b.discard(msg.Chat.ID)
		b.reply(msg.Chat.ID, "Arquivos descartados.")
	case "start", "ajuda":
		b.reply(msg.Chat.ID, "Envie os arquivos do documento e depois use /nota ou /comprovante para processar. /cancelar descarta os arquivos pendentes.")
	default:
		b.reply(msg.Chat.ID, "Comando desconhecido. Use /nota, /comprovante ou /cancelar.")
	}
	return nil
}

// stageFile downloads one attachment into the upload dir and queues it for
// the next processing command.
func (b *bot) stageFile(chatID int64, fileID, name string) error {
	file, err := b.tg.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return fmt.Errorf("get file: %w", err)
	}

	resp, err := http.Get(file.Link(b.tg.Token))
	if err != nil {
		return fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	dst, err := os.CreateTemp(b.uploadDir, "tg-*"+filepath.Ext(name))
	if err != nil {
		return fmt.Errorf("stage file: %w", err)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return fmt.Errorf("stage file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return fmt.Errorf("stage file: %w", err)
	}

	b.pending[chatID] = append(b.pending[chatID], service.SubmissionFile{
		Path:         dst.Name(),
		OriginalName: name,
	})
	b.reply(chatID, fmt.Sprintf("Arquivo recebido (%d pendente(s)). Use /nota ou /comprovante para processar.", len(b.pending[chatID])))
	return nil
}

func (b *bot) process(msg *tgbotapi.Message, kind service.DocumentKind) error {
	files := b.pending[msg.Chat.ID]
	if len(files) == 0 {
		b.reply(msg.Chat.ID, "Nenhum arquivo pendente. Envie os arquivos primeiro.")
		return nil
	}
	delete(b.pending, msg.Chat.ID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	outcome, err := b.pipeline.Process(ctx, service.Submission{
		Kind:     kind,
		Files:    files,
		Override: parseOverride(msg.CommandArguments()),
	})
	if err != nil {
		return err
	}

	b.reply(msg.Chat.ID, summarize(outcome))
	return nil
}

// parseOverride reads "campo=valor" pairs from the command arguments, e.g.
// "/nota fornecedor=illy vencimento=10/04/2025".
func parseOverride(args string) service.Override {
	var o service.Override
	for _, token := range strings.Fields(args) {
		k, v, found := strings.Cut(token, "=")
		if !found {
			continue
		}
		switch strings.ToLower(k) {
		case "fornecedor":
			o.Supplier = v
		case "meio_pagto":
			o.PaymentMethod = v
		case "valor":
			o.AmountText = v
		case "emissao":
			o.IssueDate = v
		case "vencimento":
			o.DueDate = v
		case "pagamento":
			o.PaymentDate = v
		case "numero_nota":
			o.DocumentNumber = v
		}
	}
	return o
}

func summarize(outcome service.Outcome) string {
	record := outcome.Record
	switch outcome.Decision.Kind {
	case service.DecisionCreate:
		return fmt.Sprintf("Lançado: %s, R$%s, venc. %s (aba %s, %d arquivo(s) arquivado(s)).",
			record.Supplier, record.AmountText, record.DueDate,
			outcome.Decision.LedgerTab, len(outcome.ArchivedFiles))
	case service.DecisionUpdate:
		return fmt.Sprintf("Lançamento existente atualizado: %s, R$%s, venc. %s.",
			record.Supplier, record.AmountText, record.DueDate)
	case service.DecisionUnresolvedSupplier:
		return "Não reconheci o fornecedor. O documento foi para a fila de revisão."
	case service.DecisionIncomplete:
		return fmt.Sprintf("Faltam campos: %s. O documento foi para a fila de revisão.",
			strings.Join(outcome.Decision.MissingFields, ", "))
	}
	return "Processado."
}

func (b *bot) reply(chatID int64, text string) {
	if _, err := b.tg.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error("failed to send reply", "chat_id", chatID, "error", err)
	}
}
