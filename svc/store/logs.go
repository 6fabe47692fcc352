package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
)

// DefaultLogsCollection is the MongoDB collection used by NewLogStore.
const DefaultLogsCollection = "notification_logs"

// LogStore keeps delivery logs in MongoDB, one document per attempt.
type LogStore struct {
	coll *mongo.Collection
}

func NewLogStore(db *mongo.Database) *LogStore {
	if db == nil {
		panic(ErrNilDependency)
	}
	return &LogStore{coll: db.Collection(DefaultLogsCollection)}
}

// EnsureIndexes creates the index backing per-subscriber listing.
func (s *LogStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "subscriber_id", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create log indexes: %w", err)
	}
	return nil
}

type logDocument struct {
	ID           string    `bson:"_id"`
	SubscriberID string    `bson:"subscriber_id"`
	Recipient    string    `bson:"recipient"`
	Channel      string    `bson:"channel"`
	EventType    string    `bson:"event_type"`
	Subject      string    `bson:"subject"`
	Body         string    `bson:"body"`
	Status       string    `bson:"status"`
	Error        string    `bson:"error,omitempty"`
	CreatedAt    time.Time `bson:"created_at"`
}

func toLogDocument(l notifications.Log) logDocument {
	return logDocument{
		ID:           l.ID.String(),
		SubscriberID: l.SubscriberID.String(),
		Recipient:    l.Recipient,
		Channel:      l.Channel.String(),
		EventType:    l.EventType.String(),
		Subject:      l.Subject,
		Body:         l.Body,
		Status:       string(l.Status),
		Error:        l.Error,
		CreatedAt:    l.CreatedAt.UTC(),
	}
}

func (d logDocument) toLog() (notifications.Log, error) {
	var (
		l   notifications.Log
		err error
	)
	if l.ID, err = uuid.Parse(d.ID); err != nil {
		return l, errors.Join(ErrInvalidRecord, err)
	}
	if l.SubscriberID, err = uuid.Parse(d.SubscriberID); err != nil {
		return l, errors.Join(ErrInvalidRecord, err)
	}
	if l.Channel, err = notifications.ParseChannel(d.Channel); err != nil {
		return l, errors.Join(ErrInvalidRecord, err)
	}
	if l.EventType, err = notifications.ParseEventType(d.EventType); err != nil {
		return l, errors.Join(ErrInvalidRecord, err)
	}
	l.Recipient = d.Recipient
	l.Subject = d.Subject
	l.Body = d.Body
	l.Status = notifications.Status(d.Status)
	l.Error = d.Error
	l.CreatedAt = d.CreatedAt.UTC()
	return l, nil
}

func (s *LogStore) Add(ctx context.Context, l notifications.Log) error {
	if l.ID == uuid.Nil {
		return errors.Join(notifications.ErrInvalidLog, errors.New("log ID is required"))
	}
	if _, err := s.coll.InsertOne(ctx, toLogDocument(l)); err != nil {
		return fmt.Errorf("failed to insert log: %w", err)
	}
	return nil
}

func (s *LogStore) List(ctx context.Context, subscriberID uuid.UUID, opts notifications.ListOptions) ([]notifications.Log, error) {
	filter := logFilter(subscriberID, opts.Since)
	if opts.Status != "" {
		filter = append(filter, bson.E{Key: "status", Value: string(opts.Status)})
	}
	if len(opts.Channels) > 0 {
		names := make([]string, len(opts.Channels))
		for i, ch := range opts.Channels {
			names[i] = ch.String()
		}
		filter = append(filter, bson.E{Key: "channel", Value: bson.D{{Key: "$in", Value: names}}})
	}

	find := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if opts.Offset > 0 {
		find.SetSkip(int64(opts.Offset))
	}
	if opts.Limit > 0 {
		find.SetLimit(int64(opts.Limit))
	}

	cur, err := s.coll.Find(ctx, filter, find)
	if err != nil {
		return nil, fmt.Errorf("failed to list logs: %w", err)
	}
	var docs []logDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode logs: %w", err)
	}

	logs := make([]notifications.Log, 0, len(docs))
	for _, d := range docs {
		l, err := d.toLog()
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, nil
}

func (s *LogStore) CountByStatus(ctx context.Context, subscriberID uuid.UUID, since *time.Time) (map[notifications.Status]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: logFilter(subscriberID, since)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to count logs: %w", err)
	}
	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode log counts: %w", err)
	}

	counts := map[notifications.Status]int64{
		notifications.StatusSuccess: 0,
		notifications.StatusFailed:  0,
	}
	for _, r := range rows {
		counts[notifications.Status(r.Status)] = r.Count
	}
	return counts, nil
}

func logFilter(subscriberID uuid.UUID, since *time.Time) bson.D {
	filter := bson.D{{Key: "subscriber_id", Value: subscriberID.String()}}
	if since != nil {
		filter = append(filter, bson.E{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since.UTC()}}})
	}
	return filter
}
