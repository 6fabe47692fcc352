// Package dispatcher turns queued notification commands into delivered
// messages.
//
// Producer is the write side. It resolves event and channel names, validates
// the command, checks the subscriber's plan and enabled channels, and
// enqueues. Dispatcher is the single consumer. For each command, in dequeue
// order, it:
//
//  1. rejects unknown event types and channels
//  2. loads the subscription and checks expiry, then quota
//  3. checks the plan covers the channel and event
//  4. resolves the template (custom before global) and renders it
//  5. loads the subscriber's provider settings for the channel
//  6. sends through the sender registry
//  7. on success increments usage and saves the subscription
//
// Every command ends in exactly one notifications.Log, success or failed.
// Failures never stop the loop and are never retried.
//
// Dispatcher follows the Start/Stop/Run lifecycle used across the services so
// it can run under errgroup:
//
//	g, ctx := errgroup.WithContext(ctx)
//	g.Go(d.Run(ctx))
package dispatcher
