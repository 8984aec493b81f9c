package s3

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/streamscope/blobstore"
)

// fakeDDB replays a commit log table keyed on version, mimicking the
// conditional-write semantics of DynamoDB.
type fakeDDB struct {
	items    map[uint64]string // version -> snapshot name
	putInput *dynamodb.PutItemInput
	failPut  bool
}

func newFakeDDB() *fakeDDB {
	return &fakeDDB{items: make(map[uint64]string)}
}

func (f *fakeDDB) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putInput = params
	if f.failPut {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("conditional check failed")}
	}

	var version uint64
	versionAttr := params.Item["version"].(*types.AttributeValueMemberN)
	fmt.Sscanf(versionAttr.Value, "%d", &version)
	if _, exists := f.items[version]; exists {
		return nil, &types.ConditionalCheckFailedException{Message: aws.String("conditional check failed")}
	}
	f.items[version] = params.Item["snapshot_name"].(*types.AttributeValueMemberS).Value
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDDB) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	var latest uint64
	for v := range f.items {
		if v > latest {
			latest = v
		}
	}
	if latest == 0 {
		return &dynamodb.QueryOutput{}, nil
	}
	return &dynamodb.QueryOutput{
		Items: []map[string]types.AttributeValue{{
			"base_uri":      params.ExpressionAttributeValues[":uri"],
			"version":       &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", latest)},
			"snapshot_name": &types.AttributeValueMemberS{Value: f.items[latest]},
		}},
	}, nil
}

func TestCommitStore_GetCurrent_Empty(t *testing.T) {
	cs := NewCommitStore(nil, newFakeDDB(), "commits", "s3://bucket/snapshots")

	_, err := cs.Get(context.Background(), CurrentName)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestCommitStore_CommitAndRead(t *testing.T) {
	ddb := newFakeDDB()
	cs := NewCommitStore(nil, ddb, "commits", "s3://bucket/snapshots")
	ctx := context.Background()

	require.NoError(t, cs.Put(ctx, CurrentName, []byte("snapshot-001")))

	name, err := cs.Get(ctx, CurrentName)
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot-001"), name)

	// A second commit advances the version.
	require.NoError(t, cs.Put(ctx, CurrentName, []byte("snapshot-002")))
	name, err = cs.Get(ctx, CurrentName)
	require.NoError(t, err)
	assert.Equal(t, []byte("snapshot-002"), name)
	assert.Len(t, ddb.items, 2)
}

func TestCommitStore_PutIsConditional(t *testing.T) {
	ddb := newFakeDDB()
	cs := NewCommitStore(nil, ddb, "commits", "s3://bucket/snapshots")

	require.NoError(t, cs.Put(context.Background(), CurrentName, []byte("snapshot-001")))

	require.NotNil(t, ddb.putInput)
	assert.Equal(t, "commits", aws.ToString(ddb.putInput.TableName))
	assert.Equal(t, "attribute_not_exists(version)", aws.ToString(ddb.putInput.ConditionExpression))
	uri := ddb.putInput.Item["base_uri"].(*types.AttributeValueMemberS)
	assert.Equal(t, "s3://bucket/snapshots", uri.Value)
}

func TestCommitStore_ConcurrentModification(t *testing.T) {
	ddb := newFakeDDB()
	ddb.failPut = true
	cs := NewCommitStore(nil, ddb, "commits", "s3://bucket/snapshots")

	err := cs.Put(context.Background(), CurrentName, []byte("snapshot-001"))
	assert.ErrorIs(t, err, ErrConcurrentModification)
}
