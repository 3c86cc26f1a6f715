package Notifications

import (
	"fmt"

	"Flotilla/Models"

	log "github.com/sirupsen/logrus"
)

// CleanupDuplicates removes unread notifications that duplicate an earlier
// (user, message) pair. The scan's dedup check has a benign race window, so
// duplicates can accumulate under concurrent admin page loads; this sweep
// restores the at-most-one-unread invariant.
func (n *Notifier) CleanupDuplicates() (int, error) {
	var notifications []Models.Notification
	err := n.DB.Order("user_id asc, message asc, date desc").Find(&notifications).Error
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{})
	var toDelete []uint
	for _, notification := range notifications {
		key := fmt.Sprintf("%d-%s", notification.UserID, notification.Message)
		if _, ok := seen[key]; ok && !notification.Read {
			toDelete = append(toDelete, notification.ID)
			continue
		}
		seen[key] = struct{}{}
	}

	if len(toDelete) == 0 {
		log.Info("cleanup: no duplicate notifications found")
		return 0, nil
	}

	if err := n.DB.Delete(&Models.Notification{}, toDelete).Error; err != nil {
		return 0, err
	}
	log.Infof("cleanup: deleted %d duplicate notifications", len(toDelete))
	return len(toDelete), nil
}
