package discord

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// reportEndpoint is the client endpoint used by the "Report Message" flow
var reportEndpoint = discordgo.EndpointAPI + "reporting/message"

// reportBreadcrumbs is the menu path of the child safety report category
var reportBreadcrumbs = []int{7, 76, 86, 112}

type reportRequest struct {
	Breadcrumbs []int          `json:"breadcrumbs"`
	ChannelID   string         `json:"channel_id"`
	Elements    map[string]any `json:"elements"`
	Language    string         `json:"language"`
	MessageID   string         `json:"message_id"`
	Name        string         `json:"name"`
	Variant     string         `json:"variant"`
	Version     string         `json:"version"`
}

// ReportMessage files a report for a message and reports whether Discord returned a report id.
// The raw response is returned for logging when no id is present.
func ReportMessage(ctx context.Context, s Session, channelID, messageID string) (bool, string, error) {
	req := reportRequest{
		Breadcrumbs: reportBreadcrumbs,
		ChannelID:   channelID,
		Elements:    map[string]any{},
		Language:    "en",
		MessageID:   messageID,
		Name:        "message",
		Variant:     "6",
		Version:     "1.0",
	}

	body, err := s.RequestWithBucketID("POST", reportEndpoint, req, reportEndpoint, discordgo.WithContext(ctx))
	if err != nil {
		return false, "", fmt.Errorf("reporting message %s: %w", messageID, err)
	}

	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil {
		return false, string(body), nil
	}
	if _, ok := resp["report_id"]; ok {
		return true, "", nil
	}
	return false, string(body), nil
}
