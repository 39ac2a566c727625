package push

// Routing is the decision for one notification click.
type Routing struct {
	// Focus: bring an already-open page to the front.
	Focus bool
	// NavigateURL: route the focused page to this in-app URL.
	NavigateURL string
	// OpenURL: open a new window at this URL (no page was available).
	OpenURL string
}

// RouteClick resolves a click on a notification. action is one of the
// notification's action ids, or empty for a click on the body. hasOpenClient
// reports whether a page is currently connected.
//
// Dismiss closes the notification and nothing else. View and body clicks
// focus an open page and navigate it to the story's detail route when the
// notification carries a story id; without an open page a new window is
// opened instead.
func RouteClick(action string, data NotificationData, hasOpenClient bool) Routing {
	if action == ActionDismiss {
		return Routing{}
	}

	if action == ActionView && data.StoryID != "" {
		target := data.URL
		if target == "" || target == RootURL {
			target = StoryURL(data.StoryID)
		}
		if hasOpenClient {
			return Routing{Focus: true, NavigateURL: target}
		}
		return Routing{OpenURL: target}
	}

	// Body click (or view without a story): focus the app when open,
	// otherwise open a window at the notification's URL or the root.
	if hasOpenClient {
		r := Routing{Focus: true}
		if data.StoryID != "" {
			r.NavigateURL = StoryURL(data.StoryID)
		}
		return r
	}

	target := data.URL
	if target == "" {
		target = RootURL
	}
	return Routing{OpenURL: target}
}
