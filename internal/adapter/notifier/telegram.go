package notifier

import (
	"context"
	"fmt"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/semmidev/kustos/internal/config"
	"github.com/semmidev/kustos/internal/domain"
)

// Telegram sends backup completion notices to a chat. Small archives can be
// attached directly; larger ones fall back to a text notice (Telegram bots
// cap uploads at 50MB).
type Telegram struct {
	bot        *tgbotapi.BotAPI
	chatID     int64
	sendFile   bool
	notifyOnly bool
}

func NewTelegram(cfg *config.AgentTarget) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	var chatID int64
	fmt.Sscanf(cfg.ChatID, "%d", &chatID)

	return &Telegram{
		bot:        bot,
		chatID:     chatID,
		sendFile:   cfg.SendFile,
		notifyOnly: cfg.NotifyOnly,
	}, nil
}

func (t *Telegram) BackupCreated(ctx context.Context, backup domain.Backup, archivePath string) error {
	fileInfo, err := os.Stat(archivePath)
	if err != nil {
		return fmt.Errorf("failed to stat archive: %w", err)
	}

	fileSizeMB := float64(fileInfo.Size()) / (1024 * 1024)

	if t.notifyOnly || !t.sendFile || fileSizeMB > 50 {
		message := fmt.Sprintf(
			"✅ Backup Created\n\n"+
				"📁 Name: %s\n"+
				"🆔 ID: %s\n"+
				"📊 Size: %.2f MB\n"+
				"🕐 Time: %s",
			backup.Name,
			backup.ID,
			fileSizeMB,
			backup.Date.Format("2006-01-02 15:04:05"),
		)

		msg := tgbotapi.NewMessage(t.chatID, message)
		if _, err := t.bot.Send(msg); err != nil {
			return fmt.Errorf("failed to send telegram notification: %w", err)
		}
		return nil
	}

	file := tgbotapi.NewDocument(t.chatID, tgbotapi.FilePath(archivePath))
	file.Caption = fmt.Sprintf("📦 Backup: %s (%.2f MB)", backup.Name, fileSizeMB)

	if _, err := t.bot.Send(file); err != nil {
		return fmt.Errorf("failed to send telegram file: %w", err)
	}
	return nil
}

func (t *Telegram) Notify(message string) error {
	msg := tgbotapi.NewMessage(t.chatID, message)
	_, err := t.bot.Send(msg)
	return err
}
