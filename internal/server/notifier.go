package server

import (
	"context"
	"fmt"
	"pricewatch/internal/misc"
	"time"
)

const notifySendTimeout = 10 * time.Second

// notifyDeal tells the owner their item entered deal. Fire-and-forget: a user
// without a Telegram credential is simply skipped, and transport failures are
// logged and dropped so the check cycle keeps going.
func (s Server) notifyDeal(ctx context.Context, ownerEmail string, itemURL string, observedPrice float64, targetPrice float64) {
	u, err := s.DB.UserFindByEmail(ctx, ownerEmail)
	if err != nil {
		s.Logger.Errorf("notifyDeal: Error finding User with email: %s, err: %v", ownerEmail, err)
		return
	}
	if !u.HasTelegramCredential() {
		s.Logger.Debugf("notifyDeal: No Telegram credential configured for User with email: %s, skipping", ownerEmail)
		return
	}

	text := fmt.Sprintf("💸 Price drop!\n%s\nis now %.2f, at or below your target of %.2f", itemURL, observedPrice, targetPrice)
	sendCtx, cancel := context.WithTimeout(ctx, notifySendTimeout)
	defer cancel()
	if err = s.Notifier.SendMessage(sendCtx, u.TelegramToken, u.TelegramChatID, text); err != nil {
		s.Logger.Errorf("notifyDeal: Error sending Telegram message for item: %s to User with email: %s, err: %v",
			misc.StringLimit(itemURL, 60), ownerEmail, err)
		return
	}
	s.Logger.Infof("notifyDeal: Notified User with email: %s for item: %s", ownerEmail, misc.StringLimit(itemURL, 60))
}
