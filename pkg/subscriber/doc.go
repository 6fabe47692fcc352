// Package subscriber holds the Subscriber aggregate: company details,
// credentials, contact information and the set of active delivery channels.
//
// Channel activation is checked against the subscription plan: a channel the
// plan does not allow fails with ErrChannelNotAllowed, sms requires a phone
// number, and at most MaxActiveChannels channels may be active at once.
// Passwords are stored as bcrypt hashes; refresh tokens are kept as SHA-256
// digests only.
package subscriber
