package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/roomwarden/roomwarden/internal/application/constant"
	"github.com/roomwarden/roomwarden/internal/domain/models"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/platform"
)

func welcomeMessage(ownerID int64, kind models.RoomKind) platform.Message {
	return platform.Message{
		Title:      "Your room is ready",
		Body:       fmt.Sprintf("<@%d> this %s room is yours. Use the controls below to manage it.", ownerID, kind),
		Components: []string{"room:rename", "room:retag", "room:limit", "room:ban"},
	}
}

func namingPrompt(ownerID int64, deadline time.Duration) platform.Message {
	return platform.Message{
		Title:      "Name your room",
		Body:       fmt.Sprintf("<@%d> pick a name within %s or the room will be removed.", ownerID, constant.FormatDuration(deadline)),
		Components: []string{"room:name-modal", "room:tag-select"},
	}
}

func ownershipTransferMessage(newOwnerID int64) platform.Message {
	return platform.Message{
		Body: fmt.Sprintf("<@%d> now owns this room.", newOwnerID),
	}
}

func deadlineDeletionMessage(deadline time.Duration) platform.Message {
	return platform.Message{
		Title: "Room removed",
		Body: fmt.Sprintf(
			"Your room was removed because it was not named within %s. Join the trigger channel again to create a new one.",
			constant.FormatDuration(deadline),
		),
	}
}

func spamPromptMessage(ownerID, userID int64) platform.Message {
	return platform.Message{
		Title:      "Possible join/leave spam",
		Body:       fmt.Sprintf("<@%d>, <@%d> keeps hopping in and out of your room.", ownerID, userID),
		Components: []string{fmt.Sprintf("spam:ban:%d", userID), fmt.Sprintf("spam:ignore:%d", userID)},
	}
}

func tagStatus(tags models.Tags) string {
	quoted := make([]string, len(tags))
	for i, t := range tags {
		quoted[i] = "`" + t + "`"
	}

	return strings.Join(quoted, " ")
}
