// Pulse - Content Personalization and Engagement Engine
// Copyright 2026 Pulse Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsekit/pulse

package social

import (
	"fmt"
	"net/url"
)

// ShareAction tells the caller how to execute a share intent.
type ShareAction string

const (
	// ActionOpenURL directs the caller to open a platform deep link.
	ActionOpenURL ShareAction = "open_url"

	// ActionCopyToClipboard directs the caller to copy the share text.
	// Used for platforms without a deep-link template.
	ActionCopyToClipboard ShareAction = "copy_to_clipboard"
)

// ShareIntent is the outbound contract handed to the share executor
// (browser or OS). The engine itself never performs the share.
type ShareIntent struct {
	Platform string      `json:"platform"`
	Action   ShareAction `json:"action"`
	URL      string      `json:"url,omitempty"`
	Text     string      `json:"text,omitempty"`
}

// BuildShareIntent maps a platform to its deep-link template. Unrecognized
// platforms fall back to a copy-to-clipboard directive carrying the text and
// URL verbatim.
func BuildShareIntent(platform, shareURL, shareText string) ShareIntent {
	u := url.QueryEscape(shareURL)
	t := url.QueryEscape(shareText)

	var link string
	switch platform {
	case "twitter":
		link = fmt.Sprintf("https://twitter.com/intent/tweet?text=%s&url=%s", t, u)
	case "facebook":
		link = fmt.Sprintf("https://www.facebook.com/sharer/sharer.php?u=%s", u)
	case "linkedin":
		link = fmt.Sprintf("https://www.linkedin.com/sharing/share-offsite/?url=%s", u)
	case "whatsapp":
		link = fmt.Sprintf("https://wa.me/?text=%s%%20%s", t, u)
	case "email":
		link = fmt.Sprintf("mailto:?subject=%s&body=%s", t, u)
	default:
		return ShareIntent{
			Platform: platform,
			Action:   ActionCopyToClipboard,
			Text:     shareText + " " + shareURL,
		}
	}

	return ShareIntent{
		Platform: platform,
		Action:   ActionOpenURL,
		URL:      link,
	}
}
