package mongodb

import (
	"regexp"

	"github.com/ArowuTest/hostboard-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// hostFilterDoc translates a HostFilter into a query document. Only the
// enumerated fields are ever emitted, free text is escaped before it becomes a regex.
func hostFilterDoc(f models.HostFilter) bson.D {
	doc := bson.D{}
	if len(f.IDs) > 0 {
		doc = append(doc, bson.E{Key: "_id", Value: bson.M{"$in": f.IDs}})
	}
	if len(f.Roles) > 0 {
		doc = append(doc, bson.E{Key: "role", Value: bson.M{"$in": f.Roles}})
	}
	if len(f.Locations) > 0 {
		doc = append(doc, bson.E{Key: "location", Value: bson.M{"$in": f.Locations}})
	}
	if f.ActiveOnly {
		doc = append(doc, bson.E{Key: "active", Value: true})
	}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		doc = append(doc, bson.E{Key: "$or", Value: bson.A{
			bson.M{"firstName": rx},
			bson.M{"lastName": rx},
			bson.M{"email": rx},
		}})
	}
	return doc
}

// broadcastFilterDoc translates a BroadcastFilter into a query document
func broadcastFilterDoc(f models.BroadcastFilter) bson.D {
	doc := bson.D{}
	if f.Status != "" {
		doc = append(doc, bson.E{Key: "status", Value: f.Status})
	}
	if f.CreatedBy != "" {
		doc = append(doc, bson.E{Key: "createdBy", Value: f.CreatedBy})
	}
	if f.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		doc = append(doc, bson.E{Key: "$or", Value: bson.A{
			bson.M{"title": rx},
			bson.M{"subject": rx},
		}})
	}
	return doc
}

// pageOptions applies skip/limit for 1-based page numbers; limit <= 0 means unbounded
func pageOptions(page, limit int) *options.FindOptions {
	opts := options.Find()
	if limit > 0 {
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * limit))
		opts.SetLimit(int64(limit))
	}
	return opts
}
