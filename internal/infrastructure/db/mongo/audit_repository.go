package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vietour/admin-gateway/internal/core/domain"
)

const auditCollection = "login_audit"

// AuditRepository persists authentication events in MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	ID        string `bson:"_id"`
	Outcome   string `bson:"outcome"`
	Login     string `bson:"login"`
	UserID    int64  `bson:"user_id,omitempty"`
	Role      string `bson:"role,omitempty"`
	RemoteIP  string `bson:"remote_ip,omitempty"`
	Detail    string `bson:"detail,omitempty"`
	CreatedAt int64  `bson:"created_at"`
}

// Insert writes one audit event.
func (r *AuditRepository) Insert(ctx context.Context, ev domain.AuditEvent) error {
	doc := auditDoc{
		ID:        ev.ID,
		Outcome:   string(ev.Outcome),
		Login:     ev.Login,
		UserID:    ev.UserID,
		Role:      ev.Role,
		RemoteIP:  ev.RemoteIP,
		Detail:    ev.Detail,
		CreatedAt: ev.CreatedAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Recent returns the newest events, capped at limit.
func (r *AuditRepository) Recent(ctx context.Context, limit int64) ([]domain.AuditEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find audit events: %w", err)
	}
	defer cur.Close(ctx)

	var docs []auditDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}

	events := make([]domain.AuditEvent, 0, len(docs))
	for _, d := range docs {
		events = append(events, domain.AuditEvent{
			ID:        d.ID,
			Outcome:   domain.AuditOutcome(d.Outcome),
			Login:     d.Login,
			UserID:    d.UserID,
			Role:      d.Role,
			RemoteIP:  d.RemoteIP,
			Detail:    d.Detail,
			CreatedAt: time.Unix(d.CreatedAt, 0).UTC(),
		})
	}
	return events, nil
}
