package mcp

import "context"

// VideoMetadata is one video's metadata from the YouTube tool.
type VideoMetadata struct {
	VideoID      string `json:"video_id"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channel_title"`
	ViewCount    int64  `json:"view_count"`
	LikeCount    int64  `json:"like_count"`
	PublishedAt  string `json:"published_at"`
}

// ChannelMetadata is channel-level metadata from the YouTube tool.
type ChannelMetadata struct {
	ChannelID      string `json:"channel_id"`
	Title          string `json:"title"`
	SubscriberCount int64 `json:"subscriber_count"`
	VideoCount     int64  `json:"video_count"`
}

// YouTubeResult bundles whatever subset of the request the server answered.
type YouTubeResult struct {
	Channel *ChannelMetadata `json:"channel,omitempty"`
	Videos  []VideoMetadata  `json:"videos,omitempty"`
}

// YouTubeTool wraps the "youtube" MCP server's metadata lookups.
type YouTubeTool struct {
	Session Session
	Policy  Policy
}

// Metadata fetches channel and/or video metadata per spec.VideoIDs cap.
func (t YouTubeTool) Metadata(ctx context.Context, spec YouTubeSpec) (YouTubeResult, ExecutionRecord) {
	result, rec := Execute(ctx, "youtube.metadata", t.Policy, func(ctx context.Context) (YouTubeResult, error) {
		args := map[string]any{}
		if spec.ChannelID != "" {
			args["channel_id"] = spec.ChannelID
		}
		if spec.ChannelHandle != "" {
			args["channel_handle"] = spec.ChannelHandle
		}
		if len(spec.VideoIDs) > 0 {
			args["video_ids"] = spec.VideoIDs
		}
		raw, err := t.Session.CallTool(ctx, "youtube_metadata", args)
		if err != nil {
			return YouTubeResult{}, err
		}
		return decodeYouTubeResult(raw), nil
	})
	if !rec.OK {
		return YouTubeResult{}, rec
	}
	return result, rec
}

func decodeYouTubeResult(raw map[string]any) YouTubeResult {
	var out YouTubeResult
	if ch, ok := raw["channel"].(map[string]any); ok {
		out.Channel = &ChannelMetadata{
			ChannelID:       stringField(ch, "channel_id"),
			Title:           stringField(ch, "title"),
			SubscriberCount: int64Field(ch, "subscriber_count"),
			VideoCount:      int64Field(ch, "video_count"),
		}
	}
	if items, ok := raw["videos"].([]any); ok {
		out.Videos = make([]VideoMetadata, 0, len(items))
		for _, item := range items {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			out.Videos = append(out.Videos, VideoMetadata{
				VideoID:      stringField(m, "video_id"),
				Title:        stringField(m, "title"),
				ChannelTitle: stringField(m, "channel_title"),
				ViewCount:    int64Field(m, "view_count"),
				LikeCount:    int64Field(m, "like_count"),
				PublishedAt:  stringField(m, "published_at"),
			})
		}
	}
	return out
}

func int64Field(m map[string]any, key string) int64 {
	switch v := m[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
