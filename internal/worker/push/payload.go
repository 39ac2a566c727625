// Package push turns inbound push payloads into notification descriptors and
// resolves notification clicks into navigation decisions.
//
// The server sends payloads in one of two shapes: a nested envelope with the
// notification fields under "options", or a flat envelope with everything at
// the top level. Both are modelled as explicit variants of a tagged union and
// normalized into the single Notification type, so delivery is total: any
// payload, including garbage or none at all, yields a notification.
package push

import (
	"encoding/json"
)

// Defaults used when the payload does not provide a field.
const (
	DefaultTitle = "StoryShare"
	DefaultBody  = "A new story was added!"
	DefaultIcon  = "/favicon.png"
	DefaultTag   = "story-notification"
	RootURL      = "/"
)

// Action is a button attached to a notification.
type Action struct {
	ID    string `json:"action"`
	Title string `json:"title"`
}

const (
	ActionView    = "view"
	ActionDismiss = "dismiss"
)

// Notification is the normalized descriptor every payload variant maps to.
type Notification struct {
	Title   string
	Body    string
	Icon    string
	Badge   string
	Image   string
	Data    NotificationData
	Actions []Action
	Tag     string
}

// NotificationData travels with the notification and drives click routing.
type NotificationData struct {
	URL     string
	StoryID string
}

// nestedEnvelope is the variant with notification fields under "options".
type nestedEnvelope struct {
	Title   string `json:"title"`
	Icon    string `json:"icon"`
	Badge   string `json:"badge"`
	Image   string `json:"image"`
	URL     string `json:"url"`
	StoryID string `json:"storyId"`
	Options struct {
		Body    string `json:"body"`
		Icon    string `json:"icon"`
		Badge   string `json:"badge"`
		Image   string `json:"image"`
		URL     string `json:"url"`
		StoryID string `json:"storyId"`
	} `json:"options"`
}

// flatEnvelope carries everything at the top level; "message" is an accepted
// alias for "body".
type flatEnvelope struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Message string `json:"message"`
	Icon    string `json:"icon"`
	Badge   string `json:"badge"`
	Image   string `json:"image"`
	URL     string `json:"url"`
	StoryID string `json:"storyId"`
}

// probe distinguishes the two variants: a payload is nested iff it has a
// title and an "options" object.
type probe struct {
	Title   string          `json:"title"`
	Options json.RawMessage `json:"options"`
}

// Decode maps a raw push payload to a notification. It never fails:
//   - no payload yields the default "new story" notification;
//   - structured payloads are normalized per variant;
//   - anything unparsable becomes plain text in the body.
func Decode(payload []byte) Notification {
	n := defaultNotification()

	if len(payload) == 0 {
		return n
	}

	var p probe
	if err := json.Unmarshal(payload, &p); err != nil {
		n.Body = string(payload)
		return n
	}

	if p.Title != "" && len(p.Options) > 0 && string(p.Options) != "null" {
		var env nestedEnvelope
		if err := json.Unmarshal(payload, &env); err == nil {
			return normalizeNested(env)
		}
		n.Body = string(payload)
		return n
	}

	var env flatEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		n.Body = string(payload)
		return n
	}
	return normalizeFlat(env)
}

func defaultNotification() Notification {
	return Notification{
		Title:   DefaultTitle,
		Body:    DefaultBody,
		Icon:    DefaultIcon,
		Badge:   DefaultIcon,
		Data:    NotificationData{URL: RootURL},
		Actions: []Action{},
		Tag:     DefaultTag,
	}
}

func normalizeNested(env nestedEnvelope) Notification {
	n := defaultNotification()
	n.Title = env.Title
	n.Body = firstOf(env.Options.Body, n.Body)
	n.Icon = firstOf(env.Options.Icon, env.Icon, n.Icon)
	n.Badge = firstOf(env.Options.Badge, env.Badge, n.Badge)
	n.Image = firstOf(env.Options.Image, env.Image)
	n.Data.StoryID = firstOf(env.Options.StoryID, env.StoryID)
	n.Data.URL = dataURLFor(firstOf(env.Options.URL, env.URL), n.Data.StoryID)
	n.Actions = actionsFor(n.Data.StoryID)
	n.Tag = tagFor(n.Data.StoryID)
	return n
}

func normalizeFlat(env flatEnvelope) Notification {
	n := defaultNotification()
	n.Title = firstOf(env.Title, n.Title)
	n.Body = firstOf(env.Body, env.Message, n.Body)
	n.Icon = firstOf(env.Icon, n.Icon)
	n.Badge = firstOf(env.Badge, n.Badge)
	n.Image = env.Image
	n.Data.StoryID = env.StoryID
	n.Data.URL = dataURLFor(env.URL, env.StoryID)
	n.Actions = actionsFor(n.Data.StoryID)
	n.Tag = tagFor(n.Data.StoryID)
	return n
}

// StoryURL is the in-app route of a story's detail view.
func StoryURL(storyID string) string {
	return "/#/story/" + storyID
}

// dataURLFor picks the click target for a notification: an explicit URL wins,
// then the story's detail route, then the root. Both envelope variants go
// through here so the descriptor is self-contained.
func dataURLFor(url, storyID string) string {
	if url != "" {
		return url
	}
	if storyID != "" {
		return StoryURL(storyID)
	}
	return RootURL
}

// actionsFor attaches view/dismiss buttons only when there is a story to
// view; a notification without a story has no actions.
func actionsFor(storyID string) []Action {
	if storyID == "" {
		return []Action{}
	}
	return []Action{
		{ID: ActionView, Title: "View story"},
		{ID: ActionDismiss, Title: "Close"},
	}
}

func tagFor(storyID string) string {
	if storyID == "" {
		return DefaultTag
	}
	return storyID
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
