package cli

import "context"

// Subscribe registers this device for push notifications.
func (a *App) Subscribe(ctx context.Context) error {
	if err := a.notifications.Subscribe(ctx); err != nil {
		return err
	}
	printlnFn("Subscribed to notifications.")
	return nil
}

// Unsubscribe removes the push subscription, if any.
func (a *App) Unsubscribe(ctx context.Context) error {
	if err := a.notifications.Unsubscribe(ctx); err != nil {
		return err
	}
	printlnFn("Unsubscribed.")
	return nil
}
