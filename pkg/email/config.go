package email

// Config holds email delivery configuration.
// With both Postmark tokens empty, NewSender falls back to a DevSender writing
// into DevOutputDir.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL" envDefault:"notifications@notifykit.local"`
	SupportEmail         string `env:"SUPPORT_EMAIL" envDefault:"support@notifykit.local"`
	DevOutputDir         string `env:"EMAIL_DEV_OUTPUT_DIR" envDefault:"./tmp/emails"`
}

// UsePostmark reports whether Postmark credentials are configured.
func (c Config) UsePostmark() bool {
	return c.PostmarkServerToken != "" || c.PostmarkAccountToken != ""
}

// NewSender picks the Postmark client when credentials are present and the
// on-disk DevSender otherwise.
func NewSender(cfg Config) (EmailSender, error) {
	if cfg.UsePostmark() {
		return NewPostmarkClient(cfg)
	}
	return NewDevSender(cfg.DevOutputDir), nil
}
