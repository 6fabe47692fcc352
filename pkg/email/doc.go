// Package email sends rendered notification emails.
//
// EmailSender has two implementations: a Postmark client for production and
// DevSender, which writes each message to disk as HTML plus JSON metadata.
// NewSender picks one from Config:
//
//	sender, err := email.NewSender(cfg)
//	if err != nil {
//		return err
//	}
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "user@example.com",
//		Subject:  "Order 12345 shipped",
//		BodyHTML: html,
//		Tag:      "OrderShipped",
//	})
//
// Every implementation validates SendEmailParams first and returns errors
// wrapping ErrInvalidParams. Delivery failures wrap ErrFailedToSendEmail.
//
// The templates subpackage converts Markdown bodies into HTML and wraps them
// in the default layout.
package email
