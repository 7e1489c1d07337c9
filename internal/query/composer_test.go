package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// fakeCollection records the filter and options it receives and serves
// canned documents through a real cursor.
type fakeCollection struct {
	docs []any

	countFilter any
	findFilter  any
	findOpts    *options.FindOptions
	count       int64
}

func (f *fakeCollection) CountDocuments(_ context.Context, filter any, _ ...*options.CountOptions) (int64, error) {
	f.countFilter = filter
	return f.count, nil
}

func (f *fakeCollection) Find(_ context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	f.findFilter = filter
	if len(opts) > 0 {
		f.findOpts = opts[0]
	}
	return mongo.NewCursorFromDocuments(f.docs, nil, nil)
}

func TestComposer_EmptyConditionsMatchAll(t *testing.T) {
	c := New(&fakeCollection{})

	assert.Equal(t, bson.M{}, c.Conditions())
}

func TestSearch_CaseInsensitiveRegexOnName(t *testing.T) {
	c := New(&fakeCollection{}).Search("Pixel")

	re, ok := c.Conditions()["name"].(primitive.Regex)
	require.True(t, ok)
	assert.Equal(t, "Pixel", re.Pattern)
	assert.Equal(t, "i", re.Options)
}

func TestSearch_EmptyKeywordLeavesConditionsUntouched(t *testing.T) {
	c := New(&fakeCollection{}).Search("")

	assert.Equal(t, bson.M{}, c.Conditions())
}

func TestSearch_QuotesRegexMetacharacters(t *testing.T) {
	c := New(&fakeCollection{}).Search("c++ (new)")

	re := c.Conditions()["name"].(primitive.Regex)
	assert.Equal(t, `c\+\+ \(new\)`, re.Pattern)
}

func TestFilter_EqualityClause(t *testing.T) {
	c := New(&fakeCollection{}).Filter([]Clause{
		{Field: "category", Op: OpEq, Value: "laptops"},
	})

	assert.Equal(t, bson.M{"category": "laptops"}, c.Conditions())
}

func TestFilter_RangeClausesMergeIntoOneDocument(t *testing.T) {
	c := New(&fakeCollection{}).Filter([]Clause{
		{Field: "price", Op: OpGte, Value: 100.0},
		{Field: "price", Op: OpLte, Value: 500.0},
	})

	assert.Equal(t, bson.M{
		"price": bson.M{"$gte": 100.0, "$lte": 500.0},
	}, c.Conditions())
}

func TestFilter_ClausesAreConjunctive(t *testing.T) {
	c := New(&fakeCollection{}).
		Search("phone").
		Filter([]Clause{
			{Field: "category", Op: OpEq, Value: "phones"},
			{Field: "rating", Op: OpGte, Value: 4.0},
		})

	conds := c.Conditions()
	assert.Len(t, conds, 3)
	assert.Equal(t, "phones", conds["category"])
	assert.Equal(t, bson.M{"$gte": 4.0}, conds["rating"])
}

func TestPaginate_SkipAndLimit(t *testing.T) {
	coll := &fakeCollection{}
	c := New(coll).Paginate(3, 8)

	require.NoError(t, c.Execute(context.Background(), &[]bson.M{}))
	require.NotNil(t, coll.findOpts)
	assert.Equal(t, int64(16), *coll.findOpts.Skip)
	assert.Equal(t, int64(8), *coll.findOpts.Limit)
}

func TestPaginate_PageBelowOneTreatedAsFirstPage(t *testing.T) {
	coll := &fakeCollection{}
	c := New(coll).Paginate(0, 10)

	require.NoError(t, c.Execute(context.Background(), &[]bson.M{}))
	assert.Equal(t, int64(0), *coll.findOpts.Skip)
}

func TestCount_IgnoresPagination(t *testing.T) {
	coll := &fakeCollection{count: 42}
	c := New(coll).
		Filter([]Clause{{Field: "category", Op: OpEq, Value: "laptops"}}).
		Paginate(5, 8)

	total, err := c.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), total)
	// Count sees the filter conditions, never skip/limit.
	assert.Equal(t, bson.M{"category": "laptops"}, coll.countFilter)
}

func TestExecute_DecodesDocuments(t *testing.T) {
	coll := &fakeCollection{docs: []any{
		bson.D{{Key: "name", Value: "Pixel 9"}},
		bson.D{{Key: "name", Value: "Pixel 9 Pro"}},
	}}
	c := New(coll).Search("pixel").Paginate(1, 8)

	var got []struct {
		Name string `bson:"name"`
	}
	require.NoError(t, c.Execute(context.Background(), &got))

	require.Len(t, got, 2)
	assert.Equal(t, "Pixel 9", got[0].Name)
	assert.Equal(t, "Pixel 9 Pro", got[1].Name)
}

func TestApply_CombinesAllSteps(t *testing.T) {
	coll := &fakeCollection{}
	p := Params{
		Keyword: "tv",
		Page:    2,
		Limit:   4,
		Filters: []Clause{{Field: "price", Op: OpLt, Value: 1000.0}},
	}

	c := New(coll).Apply(p)
	require.NoError(t, c.Execute(context.Background(), &[]bson.M{}))

	conds := c.Conditions()
	assert.Contains(t, conds, "name")
	assert.Equal(t, bson.M{"$lt": 1000.0}, conds["price"])
	assert.Equal(t, int64(4), *coll.findOpts.Skip)
	assert.Equal(t, int64(4), *coll.findOpts.Limit)
}
