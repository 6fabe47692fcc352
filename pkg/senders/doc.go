// Package senders delivers rendered notifications over each channel.
//
// Every channel has one Sender. Registry indexes them and refuses duplicate
// channels; Registry.Validate reports channels with no sender so a
// misconfigured process fails at startup rather than per message.
//
// Harness senders (Console, SMS) ignore provider settings and never fail.
// Email wraps an email.EmailSender. The rest call provider HTTP APIs using
// per-subscriber settings carried on Message.Settings:
//
//	Telegram  bot_token                       recipient: chat id
//	Discord   webhook_url
//	Slack     webhook_url
//	MSTeams   webhook_url
//	WhatsApp  access_token, phone_number_id   recipient: phone number
//	Signal    api_url, number                 recipient: phone number
//	WebPush   vapid_public_key, vapid_private_key, subscriber
//	                                          recipient: PushSubscription JSON
//	Firebase  project_id, service_account_json
//	                                          recipient: device token
//
// Every failure wraps ErrSendFailed. A missing setting also matches
// ErrMissingSetting, an unusable one ErrInvalidSetting. Each Send makes a
// single attempt; there are no retries.
//
// SettingsStore persists provider settings; MemorySettingsStore is the
// in-process implementation.
package senders
