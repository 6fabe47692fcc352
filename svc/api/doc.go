// Package api exposes the notification pipeline over HTTP with a chi router.
//
// Producers POST trigger requests to /v1/subscribers/{subscriberID}/events;
// an accepted request is queued and answered with 202 and the queued command.
// Delivery happens later in the dispatcher, so a 202 says nothing about the
// send outcome. Outcomes are read back from /logs and /logs/stats.
//
// Errors are written as {"error":{"code","message","details"}}:
//
//	400 invalid_request  malformed body, unknown event or channel, bad recipient
//	403 not_allowed      plan does not cover the event or channel, channel not enabled
//	404 not_found        unknown subscriber or subscription
//	503 shutting_down    the queue is closed
package api
