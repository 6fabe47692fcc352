package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/svc/dispatcher"
)

func (a *API) triggerEvent(w http.ResponseWriter, r *http.Request) error {
	subscriberID, err := subscriberIDParam(r)
	if err != nil {
		return err
	}

	var req dispatcher.TriggerRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, a.cfg.MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return errors.Join(ErrInvalidBody, err)
	}

	cmd, err := a.trigger.Trigger(r.Context(), subscriberID, req)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusAccepted, Response{Data: cmd})
	return nil
}

func (a *API) listLogs(w http.ResponseWriter, r *http.Request) error {
	subscriberID, err := subscriberIDParam(r)
	if err != nil {
		return err
	}
	opts, err := a.listOptions(r)
	if err != nil {
		return err
	}

	logs, err := a.logs.List(r.Context(), subscriberID, opts)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, Response{
		Data: logs,
		Meta: map[string]any{"limit": opts.Limit, "offset": opts.Offset, "count": len(logs)},
	})
	return nil
}

func (a *API) logStats(w http.ResponseWriter, r *http.Request) error {
	subscriberID, err := subscriberIDParam(r)
	if err != nil {
		return err
	}
	since, err := parseSince(r.URL.Query().Get("since"))
	if err != nil {
		return err
	}

	counts, err := a.logs.CountByStatus(r.Context(), subscriberID, since)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, Response{Data: counts})
	return nil
}

// listOptions reads status, channel (comma separated), since (RFC 3339),
// limit and offset. Limit defaults to and is capped at MaxPageSize.
func (a *API) listOptions(r *http.Request) (notifications.ListOptions, error) {
	q := r.URL.Query()
	opts := notifications.ListOptions{Limit: a.cfg.MaxPageSize}

	switch status := notifications.Status(q.Get("status")); status {
	case "":
	case notifications.StatusSuccess, notifications.StatusFailed:
		opts.Status = status
	default:
		return opts, fmt.Errorf("%w: status %q", ErrInvalidQuery, status)
	}

	if raw := q.Get("channel"); raw != "" {
		for name := range strings.SplitSeq(raw, ",") {
			ch, err := notifications.ParseChannel(name)
			if err != nil {
				return opts, fmt.Errorf("%w: %w", ErrInvalidQuery, err)
			}
			opts.Channels = append(opts.Channels, ch)
		}
	}

	var err error
	if opts.Since, err = parseSince(q.Get("since")); err != nil {
		return opts, err
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return opts, fmt.Errorf("%w: limit %q", ErrInvalidQuery, raw)
		}
		opts.Limit = min(n, a.cfg.MaxPageSize)
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return opts, fmt.Errorf("%w: offset %q", ErrInvalidQuery, raw)
		}
		opts.Offset = n
	}
	return opts, nil
}

func parseSince(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: since %q", ErrInvalidQuery, raw)
	}
	return &t, nil
}
