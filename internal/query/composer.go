package query

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is the narrow slice of a mongo collection the composer needs.
// *mongo.Collection satisfies it; tests provide a fake.
type Collection interface {
	CountDocuments(ctx context.Context, filter any, opts ...*options.CountOptions) (int64, error)
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
}

// Composer builds a listing query through chained refinement steps and runs
// it against a collection. Each step narrows the same conditions document;
// pagination applies only to result retrieval, never to Count.
type Composer struct {
	coll       Collection
	conditions bson.M
	skip       int64
	limit      int64
	sort       bson.D
}

// New returns a composer with no conditions over the given collection.
func New(coll Collection) *Composer {
	return &Composer{
		coll:       coll,
		conditions: bson.M{},
		sort:       bson.D{{Key: "created_at", Value: -1}},
	}
}

// Search adds a case-insensitive substring match on the name field. An empty
// keyword leaves the conditions untouched. The keyword is quoted so regex
// metacharacters in user input match literally.
func (c *Composer) Search(keyword string) *Composer {
	if keyword == "" {
		return c
	}
	c.conditions["name"] = primitive.Regex{
		Pattern: regexp.QuoteMeta(keyword),
		Options: "i",
	}
	return c
}

// Filter merges the typed clauses into the conditions document. Clauses are
// conjunctive; multiple operator clauses on one field share a nested operator
// document, so "price[gte]=100&price[lte]=500" becomes a single range.
func (c *Composer) Filter(clauses []Clause) *Composer {
	for _, cl := range clauses {
		if cl.Op == OpEq {
			c.conditions[cl.Field] = cl.Value
			continue
		}
		ops, ok := c.conditions[cl.Field].(bson.M)
		if !ok {
			ops = bson.M{}
			c.conditions[cl.Field] = ops
		}
		ops["$"+string(cl.Op)] = cl.Value
	}
	return c
}

// Paginate sets skip and limit for the current page. Pages are 1-based; a
// page below 1 is treated as page 1.
func (c *Composer) Paginate(page, perPage int) *Composer {
	if page < 1 {
		page = 1
	}
	c.limit = int64(perPage)
	c.skip = int64(perPage) * int64(page-1)
	return c
}

// Sort overrides the default newest-first ordering.
func (c *Composer) Sort(sort bson.D) *Composer {
	c.sort = sort
	return c
}

// Apply runs Search, Filter and Paginate from parsed params in one step.
func (c *Composer) Apply(p Params) *Composer {
	return c.Search(p.Keyword).Filter(p.Filters).Paginate(p.Page, p.Limit)
}

// Count returns the number of documents matching the accumulated conditions.
// Skip and limit are deliberately not applied: the count reflects the full
// filtered set, not the current page.
func (c *Composer) Count(ctx context.Context) (int64, error) {
	return c.coll.CountDocuments(ctx, c.conditions)
}

// Execute runs the query with pagination and decodes all documents of the
// current page into results, which must be a pointer to a slice.
func (c *Composer) Execute(ctx context.Context, results any) error {
	opts := options.Find().SetSort(c.sort)
	if c.limit > 0 {
		opts.SetSkip(c.skip).SetLimit(c.limit)
	}
	cursor, err := c.coll.Find(ctx, c.conditions, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, results)
}

// Conditions exposes the accumulated filter document.
func (c *Composer) Conditions() bson.M {
	return c.conditions
}
