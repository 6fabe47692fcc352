// Package secrets encrypts small values at rest, such as provider
// credentials.
//
// A Cipher holds one master key. Each Seal/Open call derives an AES-256-GCM
// key from the master key and a caller-chosen scope with HKDF-SHA256, and
// binds the scope as additional data:
//
//	key, err := secrets.ParseKey(os.Getenv("SECRETS_KEY"))
//	c, err := secrets.NewCipher(key)
//	sealed, err := c.SealString(subscriberID[:], `{"bot_token":"..."}`)
//	plain, err := c.OpenString(subscriberID[:], sealed)
//
// Opening with a different scope or master key fails with ErrDecryptionFailed.
package secrets
