package notifier

import (
	"context"
	"fmt"
	"log"

	"github.com/bwmarrin/discordgo"
	"github.com/gdg-garage/jobquest-api/internal/catalog"
	"github.com/gdg-garage/jobquest-api/internal/models"
	"gorm.io/gorm"
)

// Notifier tells a user about progression milestones. Implementations are
// best effort: callers log failures and carry on.
type Notifier interface {
	NotifyLevelUp(ctx context.Context, userID uint, level catalog.Level) error
	NotifyBadge(ctx context.Context, userID uint, badge catalog.Badge) error
}

// DiscordNotifier sends milestones as direct messages to the user's Discord
// account.
type DiscordNotifier struct {
	session *discordgo.Session
	db      *gorm.DB
}

func NewDiscordNotifier(session *discordgo.Session, db *gorm.DB) *DiscordNotifier {
	return &DiscordNotifier{
		session: session,
		db:      db,
	}
}

// NewDiscordSession builds a bot session from a token.
func NewDiscordSession(botToken string) (*discordgo.Session, error) {
	if botToken == "" {
		return nil, fmt.Errorf("discord bot token is empty")
	}
	return discordgo.New("Bot " + botToken)
}

func (n *DiscordNotifier) NotifyLevelUp(ctx context.Context, userID uint, level catalog.Level) error {
	user, err := n.recipient(ctx, userID)
	if err != nil {
		return err
	}
	return n.send(user, levelUpMessage(user, level))
}

func (n *DiscordNotifier) NotifyBadge(ctx context.Context, userID uint, badge catalog.Badge) error {
	user, err := n.recipient(ctx, userID)
	if err != nil {
		return err
	}
	return n.send(user, badgeMessage(user, badge))
}

func (n *DiscordNotifier) recipient(ctx context.Context, userID uint) (models.User, error) {
	if n.session == nil {
		return models.User{}, fmt.Errorf("discord session is nil")
	}
	var user models.User
	if err := n.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return models.User{}, fmt.Errorf("load recipient %d: %w", userID, err)
	}
	if user.DiscordID == "" {
		return models.User{}, fmt.Errorf("user %d has no discord account", userID)
	}
	return user, nil
}

func (n *DiscordNotifier) send(user models.User, message string) error {
	channel, err := n.session.UserChannelCreate(user.DiscordID)
	if err != nil {
		log.Printf("Failed to open discord DM channel: %v", err)
		return err
	}

	if _, err := n.session.ChannelMessageSend(channel.ID, message); err != nil {
		log.Printf("Failed to send discord message: %v", err)
		return err
	}
	return nil
}

func levelUpMessage(user models.User, level catalog.Level) string {
	title := level.Title
	if title == "" {
		title = level.Name
	}
	return fmt.Sprintf("⬆️ **Level Up!**\nCongratulations %s, you reached **level %d** (%s).\n**Total XP required:** %d",
		user.Username,
		level.Order,
		title,
		level.RequiredXP,
	)
}

func badgeMessage(user models.User, badge catalog.Badge) string {
	descStr := ""
	if badge.Description != "" {
		descStr = fmt.Sprintf("\n%s", badge.Description)
	}
	return fmt.Sprintf("🏅 **Badge Unlocked**\n%s earned **%s**!%s", user.Username, badge.Name, descStr)
}

// NoopNotifier is used when notifications are disabled or no bot is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyLevelUp(context.Context, uint, catalog.Level) error { return nil }
func (NoopNotifier) NotifyBadge(context.Context, uint, catalog.Badge) error   { return nil }
